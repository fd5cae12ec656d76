package dto

import "time"

// IssuerConfigRequest body para PUT /api/emisor.
type IssuerConfigRequest struct {
	BusinessName string `json:"razon_social"`
	Modality     int    `json:"codigo_modalidad"`
	BranchCode   int    `json:"codigo_sucursal"`
	PointOfSale  *int   `json:"codigo_punto_venta,omitempty"`
	ActivityCode string `json:"actividad_economica"`
	Legend       string `json:"leyenda,omitempty"` // vacía: la de la actividad
	CertPath     string `json:"ruta_certificado,omitempty"`
}

// AuthorizationWindowRequest body para PUT /api/emisor/cufd.
type AuthorizationWindowRequest struct {
	CUFD      string    `json:"cufd"`
	ExpiresAt time.Time `json:"fecha_vigencia"`
}

// IssuerConfigResponse configuración del emisor con el estado del CUFD.
type IssuerConfigResponse struct {
	NIT               string `json:"nit"`
	BusinessName      string `json:"razon_social"`
	Modality          int    `json:"codigo_modalidad"`
	BranchCode        int    `json:"codigo_sucursal"`
	PointOfSale       *int   `json:"codigo_punto_venta,omitempty"`
	ActivityCode      string `json:"actividad_economica"`
	Legend            string `json:"leyenda"`
	CertPath          string `json:"ruta_certificado,omitempty"`
	LastInvoiceNumber int64  `json:"ultimo_numero"`
	CUFD              string `json:"cufd,omitempty"`
	CUFDExpiresAt     string `json:"cufd_vigencia,omitempty"`
	CUFDExpired       bool   `json:"cufd_vencido"`
	CUFDNearExpiry    bool   `json:"cufd_por_vencer"`
}
