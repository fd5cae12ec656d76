package entity

import "time"

// Client cliente frecuente; permite autocompletar documento y nombre al facturar.
type Client struct {
	ID            string
	DocType       int // 1 = CI, 5 = NIT
	DocNumber     string
	Complement    string
	Name          string
	SearchKey     string // nombre normalizado (minúsculas, sin tildes)
	Phone         string
	Email         string
	InvoiceCount  int
	LastInvoiceAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
