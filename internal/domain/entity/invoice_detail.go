package entity

import "github.com/shopspring/decimal"

// InvoiceDetail línea de detalle (detalleFactura). El subtotal se guarda explícito, no se recalcula.
type InvoiceDetail struct {
	ID             string
	InvoiceID      string
	ActivityCode   string // actividad económica CAEB
	SINProductCode int    // código de producto del catálogo SIN
	ProductCode    string // código interno
	Description    string
	Quantity       decimal.Decimal // 4 decimales
	UnitOfMeasure  int
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
}
