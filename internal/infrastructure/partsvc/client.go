package partsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/serviteca/taller-api/internal/application/ports"
	"github.com/serviteca/taller-api/internal/domain"
)

// Ensure Client implementa los puertos de salida.
var _ ports.PartsService = (*Client)(nil)
var _ ports.ServiceRequestCompleter = (*Client)(nil)

// Client cliente JSON sobre HTTP hacia el servicio de repuestos.
// Las llamadas NO son transaccionales con la base local: el llamador las invoca
// después de su commit y trata cualquier fallo como best-effort.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New construye el cliente. timeout en cero usa 10 s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type deductionPayload struct {
	ResourceID    int64  `json:"resource_id"`
	Quantity      int64  `json:"quantity"`
	RequestNumber string `json:"request_number"`
}

// MirrorDeduction replica una salida ya emitida localmente.
func (c *Client) MirrorDeduction(ctx context.Context, resourceID, quantity int64, requestNumber string) error {
	payload := deductionPayload{
		ResourceID:    resourceID,
		Quantity:      quantity,
		RequestNumber: requestNumber,
	}
	return c.post(ctx, "/api/parts/deductions", payload)
}

// CompleteServiceRequest marca como completada una solicitud de servicio externa.
func (c *Client) CompleteServiceRequest(ctx context.Context, serviceRequestID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/service-requests/%d/complete", serviceRequestID), struct{}{})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrExternalService, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: HTTP %d", domain.ErrExternalService, path, resp.StatusCode)
	}
	return nil
}
