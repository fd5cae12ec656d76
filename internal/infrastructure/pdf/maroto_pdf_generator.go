// Package pdf implementa la representación gráfica de la factura electrónica SIAT.
//
// Layout de la página carta:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + sucursal │  NIT / N° Factura / CUF   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + documento + fecha de emisión              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Cant. | Unidad | Descripción | P.Unit | Sub │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total Bs / Importe base crédito fiscal            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR + leyendas                                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 82, Blue: 62}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const footerNotice = "Este documento es la Representación Gráfica de un Documento Fiscal Digital " +
	"emitido en una modalidad de facturación en línea"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	issuer *entity.IssuerConfig,
	qrURL string,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Factura %d", invoice.Number), true).
		WithAuthor(issuer.BusinessName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(invoice.Details)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(invoice, qrURL)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social y sucursal (izq); NIT, número y CUF (der).
func headerRow(invoice *entity.Invoice, issuer *entity.IssuerConfig) core.Row {
	branch := "Casa Matriz"
	if invoice.BranchCode > 0 {
		branch = fmt.Sprintf("Sucursal N° %d", invoice.BranchCode)
	}
	if invoice.PointOfSale != nil {
		branch += fmt.Sprintf(" · Punto de Venta N° %d", *invoice.PointOfSale)
	}

	title := "FACTURA"
	subtitle := "(Con Derecho a Crédito Fiscal)"
	if invoice.InvoiceType == pkgsiat.InvoiceTypeWithoutTaxCredit {
		subtitle = "(Sin Derecho a Crédito Fiscal)"
	}

	return row.New(30).Add(
		col.New(6).Add(
			text.New(issuer.BusinessName, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(branch, props.Text{Size: 8, Top: 8, Color: colorGray}),
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 14, Top: 16}),
			text.New(subtitle, props.Text{Size: 8, Top: 23, Color: colorGray}),
		),
		col.New(6).Add(
			text.New("NIT: "+invoice.NIT, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New(fmt.Sprintf("FACTURA N° %d", invoice.Number), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 6,
			}),
			text.New("CÓD. AUTORIZACIÓN:", props.Text{
				Size: 7, Align: align.Right, Top: 12, Color: colorGray,
			}),
			text.New(invoice.CUF, props.Text{
				Size: 7, Align: align.Right, Top: 16,
			}),
		),
	)
}

// clientRow: datos del comprador y fecha de emisión.
func clientRow(invoice *entity.Invoice) core.Row {
	doc := invoice.ClientDocNumber
	if invoice.ClientComplement != "" {
		doc += "-" + invoice.ClientComplement
	}
	docLabel := "NIT/CI/CEX"
	if name, ok := pkgsiat.IdentityDocumentTypes[invoice.ClientDocType]; ok {
		docLabel = strings.SplitN(name, " ", 2)[0]
	}

	return row.New(14).Add(
		col.New(8).Add(
			text.New("Nombre/Razón Social: "+invoice.ClientName, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2,
			}),
			text.New(docLabel+": "+doc, props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Fecha: "+invoice.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Unidad", 2, align.Left),
		h("Descripción", 3, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea de detalle.
func tableDetailRows(details []entity.InvoiceDetail) []core.Row {
	result := make([]core.Row, 0, len(details))
	for _, d := range details {
		unit := pkgsiat.UnitsOfMeasure[d.UnitOfMeasure]
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(d.ProductCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(d.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(unit, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(3).Add(text.New(d.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatAmount(d.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatAmount(d.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	return row.New(14).Add(
		col.New(5),
		col.New(4).Add(
			label("TOTAL Bs:"),
			text.New("IMPORTE BASE CRÉDITO FISCAL:", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6,
			}),
		),
		col.New(3).Add(
			value(formatAmount(invoice.Total), 0),
			value(formatAmount(invoice.TaxableBase), 6),
		),
	)
}

// footerRows: QR de verificación + leyenda Ley 453 + aviso de representación gráfica.
func footerRows(invoice *entity.Invoice, qrURL string) []core.Row {
	var rows []core.Row
	if qrURL != "" {
		rows = append(rows, row.New(40).Add(
			col.New(8).Add(
				text.New(footerNotice, props.Text{
					Style: fontstyle.Bold, Size: 8, Top: 4, Align: align.Center,
				}),
				text.New(invoice.Legend, props.Text{
					Size: 7.5, Top: 16, Color: colorGray, Align: align.Center,
				}),
			),
			col.New(4).Add(code.NewQr(qrURL, props.Rect{Percent: 95, Center: true})),
		))
		return rows
	}
	rows = append(rows,
		row.New(10).Add(col.New(12).Add(text.New(footerNotice, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 2,
		}))),
		row.New(10).Add(col.New(12).Add(text.New(invoice.Legend, props.Text{
			Size: 7.5, Align: align.Center, Color: colorGray, Top: 2,
		}))),
	)
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatAmount formatea con separador de miles "," y 2 decimales.
// Ej: 1234567.5 → "1,234,567.50"
func formatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "." + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
