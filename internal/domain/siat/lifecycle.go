package siat

import (
	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// transitions estados destino permitidos desde cada estado. Aceptada -> Anulada es la única salida
// de un estado final; Rechazada y Anulada no tienen salida.
var transitions = map[entity.InvoiceStatus][]entity.InvoiceStatus{
	entity.StatusPendingSubmission: {entity.StatusSubmitting},
	entity.StatusSubmitting:        {entity.StatusAccepted, entity.StatusRejected},
	entity.StatusAccepted:          {entity.StatusVoided},
	entity.StatusContingency:       {entity.StatusPendingSubmission, entity.StatusSubmitting},
}

// CanTransition indica si la transición from -> to es legal.
func CanTransition(from, to entity.InvoiceStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition valida la transición; devuelve *domain.IllegalTransitionError si no es legal.
func Transition(from, to entity.InvoiceStatus) (entity.InvoiceStatus, error) {
	if !CanTransition(from, to) {
		return from, &domain.IllegalTransitionError{From: from.String(), To: to.String()}
	}
	return to, nil
}

// ApplyTransition cambia el estado de la factura en memoria si la transición es legal.
func ApplyTransition(inv *entity.Invoice, to entity.InvoiceStatus) error {
	next, err := Transition(inv.Status, to)
	if err != nil {
		return err
	}
	inv.Status = next
	return nil
}

// InitialStatus estado inicial según el tipo de emisión: fuera de línea entra como contingencia.
func InitialStatus(emissionType int) entity.InvoiceStatus {
	if emissionType == pkgsiat.EmissionOffline {
		return entity.StatusContingency
	}
	return entity.StatusPendingSubmission
}
