package entity

import "time"

// NearExpiryThreshold margen antes del vencimiento del CUFD a partir del cual se considera próximo a vencer.
const NearExpiryThreshold = 10 * time.Minute

// IssuerConfig configuración del emisor: datos fiscales, CUFD vigente y contador de facturas.
// Existe un registro por NIT.
type IssuerConfig struct {
	NIT          string
	BusinessName string // razón social según padrón del SIN
	Modality     int
	BranchCode   int
	PointOfSale  *int
	ActivityCode string
	Legend       string
	CertPath     string // ruta al .p12/.pfx; la contraseña no se guarda aquí

	CUFD          string
	CUFDIssuedAt  *time.Time
	CUFDExpiresAt *time.Time

	LastInvoiceNumber int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthorizationWindow devuelve la ventana del CUFD guardada en la configuración.
func (c *IssuerConfig) AuthorizationWindow() AuthorizationWindow {
	w := AuthorizationWindow{Code: c.CUFD}
	if c.CUFDIssuedAt != nil {
		w.IssuedAt = *c.CUFDIssuedAt
	}
	if c.CUFDExpiresAt != nil {
		w.ExpiresAt = *c.CUFDExpiresAt
	}
	return w
}

// AuthorizationWindow código de autorización diario (CUFD) y su vigencia.
// IsExpired e IsNearExpiry se derivan siempre contra el reloj; nunca se persisten.
type AuthorizationWindow struct {
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired es verdadero sin CUFD, sin vencimiento o con el vencimiento ya pasado.
func (w AuthorizationWindow) IsExpired(now time.Time) bool {
	if w.Code == "" || w.ExpiresAt.IsZero() {
		return true
	}
	return now.After(w.ExpiresAt)
}

// IsNearExpiry es verdadero si faltan menos de NearExpiryThreshold para el vencimiento.
func (w AuthorizationWindow) IsNearExpiry(now time.Time) bool {
	if w.ExpiresAt.IsZero() {
		return false
	}
	return w.ExpiresAt.Sub(now) < NearExpiryThreshold
}
