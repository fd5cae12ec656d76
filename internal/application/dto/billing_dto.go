package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CertifyInvoiceRequest body para POST /api/facturas.
// Sucursal, punto de venta, modalidad y leyenda se toman de la configuración del emisor.
type CertifyInvoiceRequest struct {
	ClientDocType    int                    `json:"codigo_tipo_documento"`
	ClientDocNumber  string                 `json:"numero_documento"`
	ClientComplement string                 `json:"complemento,omitempty"`
	ClientName       string                 `json:"nombre_razon_social"`
	ClientEmail      string                 `json:"email,omitempty"`
	PaymentMethod    int                    `json:"codigo_metodo_pago"`
	EmissionType     int                    `json:"codigo_emision,omitempty"` // 1 en línea (defecto), 2 fuera de línea
	CUFD             string                 `json:"cufd,omitempty"`           // si va vacío se usa el vigente del emisor
	IssuedAt         *time.Time             `json:"fecha_emision,omitempty"`  // si va vacío, hora actual de Bolivia
	Details          []InvoiceDetailRequest `json:"detalle"`
}

// InvoiceDetailRequest línea de factura. El subtotal se calcula como cantidad × precio, redondeado a 2 decimales.
type InvoiceDetailRequest struct {
	ActivityCode   string          `json:"actividad_economica"`
	SINProductCode int             `json:"codigo_producto_sin"`
	ProductCode    string          `json:"codigo_producto"`
	Description    string          `json:"descripcion"`
	Quantity       decimal.Decimal `json:"cantidad"`
	UnitOfMeasure  int             `json:"unidad_medida,omitempty"` // 58 (servicio) por defecto
	UnitPrice      decimal.Decimal `json:"precio_unitario"`
}

// InvoiceResponse factura certificada.
type InvoiceResponse struct {
	ID                 string                  `json:"id"`
	NIT                string                  `json:"nit"`
	Number             int64                   `json:"numero_factura"`
	CUF                string                  `json:"cuf"`
	CUFD               string                  `json:"cufd"`
	BranchCode         int                     `json:"codigo_sucursal"`
	PointOfSale        *int                    `json:"codigo_punto_venta,omitempty"`
	IssuedAt           string                  `json:"fecha_emision"`
	ClientDocType      int                     `json:"codigo_tipo_documento"`
	ClientDocNumber    string                  `json:"numero_documento"`
	ClientName         string                  `json:"nombre_razon_social"`
	PaymentMethod      int                     `json:"codigo_metodo_pago"`
	Total              decimal.Decimal         `json:"monto_total"`
	IVA                decimal.Decimal         `json:"iva"`
	Legend             string                  `json:"leyenda"`
	Status             string                  `json:"estado"`
	AuthorizationCode  string                  `json:"codigo_autorizacion,omitempty"`
	RejectionReason    string                  `json:"motivo_rechazo,omitempty"`
	SubmissionAttempts int                     `json:"intentos_envio"`
	QRURL              string                  `json:"url_qr"`
	SignedXML          string                  `json:"xml_firmado,omitempty"`
	Details            []InvoiceDetailResponse `json:"detalle,omitempty"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ActivityCode   string          `json:"actividad_economica"`
	SINProductCode int             `json:"codigo_producto_sin"`
	ProductCode    string          `json:"codigo_producto"`
	Description    string          `json:"descripcion"`
	Quantity       decimal.Decimal `json:"cantidad"`
	UnitOfMeasure  int             `json:"unidad_medida"`
	UnitPrice      decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// CertificationFailureResponse cuerpo de error cuando la certificación se detiene en un paso.
type CertificationFailureResponse struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	Step              string `json:"paso"`
	Number            int64  `json:"numero_factura,omitempty"` // número consumido aunque haya fallado
	SequenceAllocated bool   `json:"numero_consumido"`
}

// StatusUpdateRequest body para los cambios de estado informados por el SIN.
type StatusUpdateRequest struct {
	AuthorizationCode string `json:"codigo_autorizacion,omitempty"`
	Reason            string `json:"motivo,omitempty"`
}

// InvoiceHistoryQuery filtros de GET /api/facturas.
type InvoiceHistoryQuery struct {
	From            string `query:"desde"` // yyyy-mm-dd
	To              string `query:"hasta"` // yyyy-mm-dd, inclusive
	Status          string `query:"estado"`
	ClientDocNumber string `query:"documento"`
	PageRequest
}

// InvoiceListResponse listado paginado de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
