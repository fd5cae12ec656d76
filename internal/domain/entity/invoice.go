package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de envío de la factura al SIN. Los valores numéricos se persisten tal cual.
type InvoiceStatus int

const (
	StatusPendingSubmission InvoiceStatus = 0 // Guardada localmente, pendiente de envío
	StatusSubmitting        InvoiceStatus = 1 // Enviada al SIN, esperando respuesta
	StatusAccepted          InvoiceStatus = 2 // Aceptada; tiene código de autorización
	StatusRejected          InvoiceStatus = 3 // Rechazada; ver RejectionReason
	StatusVoided            InvoiceStatus = 4 // Anulada en el SIN
	StatusContingency       InvoiceStatus = 5 // Emitida offline, pendiente de regularización
)

var statusNames = map[InvoiceStatus]string{
	StatusPendingSubmission: "PENDIENTE_ENVIO",
	StatusSubmitting:        "ENVIANDO",
	StatusAccepted:          "ACEPTADA",
	StatusRejected:          "RECHAZADA",
	StatusVoided:            "ANULADA",
	StatusContingency:       "CONTINGENCIA",
}

func (s InvoiceStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "DESCONOCIDO"
}

// Valid indica si el estado pertenece al catálogo.
func (s InvoiceStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseInvoiceStatus acepta el nombre ("ACEPTADA") o el código ("2").
func ParseInvoiceStatus(v string) (InvoiceStatus, bool) {
	for s, n := range statusNames {
		if n == v {
			return s, true
		}
	}
	if len(v) == 1 && v[0] >= '0' && v[0] <= '5' {
		return InvoiceStatus(v[0] - '0'), true
	}
	return 0, false
}

// Invoice factura del sector servicios (solicitudServicioRecepcionFactura).
type Invoice struct {
	ID string

	NIT         string // NIT del emisor; string para no perder ceros a la izquierda
	Number      int64  // numeroFactura, asignado por el SequenceAllocator
	CUF         string // Código Único de Factura (hex)
	CUFD        string // Código Único de Facturación Diaria vigente al emitir
	BranchCode  int    // 0 = casa matriz
	PointOfSale *int   // nil si no aplica

	Modality     int
	EmissionType int
	InvoiceType  int
	SectorType   int

	IssuedAt time.Time // hora civil local con milisegundos, nunca UTC

	ClientID         string
	ClientName       string
	ClientDocType    int
	ClientDocNumber  string
	ClientComplement string

	Total         decimal.Decimal
	TaxableBase   decimal.Decimal // montoTotalSujetoIva
	PaymentMethod int
	Legend        string // leyenda Ley 453

	Details []InvoiceDetail
	Status  InvoiceStatus

	AuthorizationCode   string
	RejectionReason     string
	AuthorityResponseAt *time.Time
	SignedXML           string
	SubmissionAttempts  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PointOfSaleCode devuelve el punto de venta o 0 si no aplica.
func (i *Invoice) PointOfSaleCode() int {
	if i.PointOfSale == nil {
		return 0
	}
	return *i.PointOfSale
}

// InvoiceFilter filtros del historial de facturas. From es inclusivo y To exclusivo.
type InvoiceFilter struct {
	NIT             string
	From            *time.Time
	To              *time.Time
	Status          *InvoiceStatus
	ClientDocNumber string
	Limit           int
	Offset          int
}
