package dto

// Tamaños de página de historial de facturas y listado de clientes.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación por desplazamiento (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: límite 1..MaxPageLimit (20 si no viene) y offset no negativo.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse página efectivamente aplicada; Total solo cuando el listado lo calcula.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error de la API. Code es estable (VALIDATION, DUPLICATE, NO_ISSUER_CONFIG...);
// en errores internos y de persistencia Message es un texto genérico.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
