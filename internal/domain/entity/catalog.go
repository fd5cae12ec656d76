package entity

// CatalogEntry valor de un catálogo paramétrico del SIN.
type CatalogEntry struct {
	Code        int
	Description string
}

// Legend leyenda de la Ley 453 por actividad económica.
type Legend struct {
	ActivityCode string
	Text         string
}
