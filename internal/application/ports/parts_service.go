package ports

import "context"

// PartsService puerto de salida hacia el servicio externo de repuestos.
// Las llamadas son best-effort y NO son transaccionales con la base local: el
// llamador ya confirmó su tx cuando invoca este puerto; un fallo se registra en el
// log de la aplicación y no dispara compensación ni rollback.
type PartsService interface {
	// MirrorDeduction replica en el servicio de repuestos una salida ya emitida
	// localmente. requestNumber identifica la solicitud origen para trazabilidad.
	MirrorDeduction(ctx context.Context, resourceID, quantity int64, requestNumber string) error
}

// ServiceRequestCompleter puerto de salida hacia el servicio de solicitudes de
// servicio: al completar una tarea derivada de una solicitud externa, esa solicitud
// se marca completada. Mismas semánticas best-effort que PartsService.
type ServiceRequestCompleter interface {
	CompleteServiceRequest(ctx context.Context, serviceRequestID int64) error
}
