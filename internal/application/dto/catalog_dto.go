package dto

// CatalogEntryResponse elemento de un catálogo del SIN.
type CatalogEntryResponse struct {
	Code        int    `json:"codigo"`
	Description string `json:"descripcion"`
}

// LegendResponse leyenda Ley 453 para una actividad.
type LegendResponse struct {
	ActivityCode string `json:"actividad_economica"`
	Text         string `json:"leyenda"`
}

// IVAResponse IVA contenido en un monto total.
type IVAResponse struct {
	Total string `json:"monto_total"`
	IVA   string `json:"iva"`
}
