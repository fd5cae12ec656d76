package dto

// ClientRequest body para POST /api/clientes (alta o actualización por documento).
type ClientRequest struct {
	DocType    int    `json:"codigo_tipo_documento"`
	DocNumber  string `json:"numero_documento"`
	Complement string `json:"complemento,omitempty"`
	Name       string `json:"nombre_razon_social"`
	Phone      string `json:"telefono,omitempty"`
	Email      string `json:"email,omitempty"`
}

// ClientResponse cliente frecuente.
type ClientResponse struct {
	ID            string `json:"id"`
	DocType       int    `json:"codigo_tipo_documento"`
	DocNumber     string `json:"numero_documento"`
	Complement    string `json:"complemento,omitempty"`
	Name          string `json:"nombre_razon_social"`
	Phone         string `json:"telefono,omitempty"`
	Email         string `json:"email,omitempty"`
	InvoiceCount  int    `json:"facturas_emitidas"`
	LastInvoiceAt string `json:"ultima_factura,omitempty"`
}
