package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/domain"
)

// respondError debe traducir cada error de dominio a su estado y código HTTP.
func TestRespondError_MapeoDeDominio(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrNotTaskOwner, http.StatusForbidden, "NOT_TASK_OWNER"},
		{errors.New("fallo inesperado"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/x", func(c *fiber.Ctx) error {
			return respondError(c, tc.err)
		})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, tc.status, resp.StatusCode, "error: %v", tc.err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Contains(t, string(body), tc.code)
	}
}
