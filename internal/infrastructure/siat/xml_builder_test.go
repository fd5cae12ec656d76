package siat_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/infrastructure/siat"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func buildInvoice() *entity.Invoice {
	return &entity.Invoice{
		NIT:             "123456789",
		Number:          7,
		CUF:             "D83FF05CF3B72639FF37B2733631571A39002E66",
		CUFD:            "BQUE+QytqQUDBKVUFOSVRPQkxVRVZFUlNJT04=",
		Modality:        1,
		EmissionType:    1,
		InvoiceType:     1,
		SectorType:      1,
		IssuedAt:        time.Date(2024, 1, 15, 14, 30, 52, 123_000_000, time.Local),
		ClientName:      "Juan Pérez",
		ClientDocType:   1,
		ClientDocNumber: "4567890",
		Total:           decimal.RequireFromString("100"),
		TaxableBase:     decimal.RequireFromString("100"),
		PaymentMethod:   1,
		Legend:          `"LEY N° 453: EL PROVEEDOR DE SERVICIOS DEBE ENTREGAR ESTA FACTURA AL CONSUMIDOR."`,
		Details: []entity.InvoiceDetail{{
			ActivityCode:   "869010",
			SINProductCode: 86901,
			ProductCode:    "SES-01",
			Description:    "Sesión de fisioterapia",
			Quantity:       decimal.RequireFromString("1.0000"),
			UnitOfMeasure:  58,
			UnitPrice:      decimal.RequireFromString("100"),
			Subtotal:       decimal.RequireFromString("100"),
		}},
	}
}

func childNames(el *etree.Element) []string {
	var out []string
	for _, c := range el.ChildElements() {
		out = append(out, c.Tag)
	}
	return out
}

func text(t *testing.T, root *etree.Element, path string) string {
	t.Helper()
	el := root.FindElement(path)
	require.NotNil(t, el, "falta el nodo %s", path)
	return el.Text()
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_OrdenDeCabecera(t *testing.T) {
	doc, err := siat.NewXMLBuilderService().Build(buildInvoice())
	require.NoError(t, err)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, siat.RootElement, root.Tag)
	assert.Equal(t, siat.NamespaceSIAT, root.SelectAttrValue("xmlns", ""))

	expected := []string{
		"nitEmisor", "modalidad", "tipoEmisionFactura", "tipoFactura", "tipoDocumentoSector",
		"codigoSucursal", "numeroFactura", "cuf", "cufd", "fechaEmision",
		"codigoTipoDocumentoIdentidad", "numeroDocumento", "nombreRazonSocial",
		"montoTotal", "montoTotalSujetoIva", "codigoMoneda", "tipoCambio", "montoTotalMoneda",
		"codigoMetodoPago", "leyenda", "detalleFactura",
	}
	assert.Equal(t, expected, childNames(root))
}

func TestBuild_DetalleOrdenYFormato(t *testing.T) {
	doc, err := siat.NewXMLBuilderService().Build(buildInvoice())
	require.NoError(t, err)

	item := doc.Root().SelectElement(siat.DetailElement)
	require.NotNil(t, item)
	assert.Equal(t, []string{
		"actividadEconomica", "codigoProductoSin", "codigoProducto", "descripcion",
		"cantidad", "unidadMedida", "precioUnitario", "subTotal",
	}, childNames(item))

	assert.Equal(t, "1.00", item.SelectElement("cantidad").Text())
	assert.Equal(t, "100.00", item.SelectElement("precioUnitario").Text())
	assert.Equal(t, "100.00", item.SelectElement("subTotal").Text())
	assert.Equal(t, "Sesión de fisioterapia", item.SelectElement("descripcion").Text())
}

func TestBuild_FormatosDeCabecera(t *testing.T) {
	doc, err := siat.NewXMLBuilderService().Build(buildInvoice())
	require.NoError(t, err)
	root := doc.Root()

	assert.Equal(t, "2024-01-15T14:30:52.123", text(t, root, "fechaEmision"))
	assert.Equal(t, "100.00", text(t, root, "montoTotal"))
	assert.Equal(t, "100.00", text(t, root, "montoTotalSujetoIva"))
	assert.Equal(t, "100.00", text(t, root, "montoTotalMoneda"))
	assert.Equal(t, "1", text(t, root, "codigoMoneda"))
	assert.Equal(t, "1.00", text(t, root, "tipoCambio"))
	assert.Equal(t, "0", text(t, root, "codigoSucursal"))
	assert.Equal(t, "7", text(t, root, "numeroFactura"))
}

func TestBuild_RedondeoDeMontos(t *testing.T) {
	inv := buildInvoice()
	inv.Total = decimal.RequireFromString("1234567.005")
	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)
	// Sin separador de miles y con punto decimal.
	assert.Equal(t, "1234567.01", text(t, doc.Root(), "montoTotal"))
}

func TestBuild_OmitePuntoDeVentaNulo(t *testing.T) {
	doc, err := siat.NewXMLBuilderService().Build(buildInvoice())
	require.NoError(t, err)
	assert.Nil(t, doc.Root().SelectElement("codigoPuntoVenta"))

	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.NotContains(t, out, "codigoPuntoVenta")
}

func TestBuild_IncluyePuntoDeVentaCero(t *testing.T) {
	inv := buildInvoice()
	pos := 0
	inv.PointOfSale = &pos
	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)
	assert.Equal(t, "0", text(t, doc.Root(), "codigoPuntoVenta"))

	names := childNames(doc.Root())
	assert.Equal(t, "codigoSucursal", names[5])
	assert.Equal(t, "codigoPuntoVenta", names[6])
}

func TestBuild_OmiteCamposEnBlanco(t *testing.T) {
	inv := buildInvoice()
	inv.ClientComplement = "   "
	inv.Details[0].ProductCode = ""
	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)

	assert.Nil(t, doc.Root().SelectElement("complemento"))
	assert.Nil(t, doc.Root().SelectElement(siat.DetailElement).SelectElement("codigoProducto"))

	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.NotContains(t, out, "<complemento")
	assert.NotContains(t, out, "/>", "ningún nodo vacío")
}

func TestBuild_ComplementoPresente(t *testing.T) {
	inv := buildInvoice()
	inv.ClientComplement = "1A"
	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)

	names := childNames(doc.Root())
	assert.Equal(t, "nombreRazonSocial", names[12])
	assert.Equal(t, "complemento", names[13])
	assert.Equal(t, "montoTotal", names[14])
}

func TestBuild_VariosDetalles(t *testing.T) {
	inv := buildInvoice()
	second := inv.Details[0]
	second.Description = "Evaluación inicial"
	inv.Details = append(inv.Details, second)

	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)
	items := doc.Root().SelectElements(siat.DetailElement)
	require.Len(t, items, 2)
	assert.Equal(t, "Evaluación inicial", items[1].SelectElement("descripcion").Text())
}

func TestBuild_DeclaracionYSangria(t *testing.T) {
	doc, err := siat.NewXMLBuilderService().Build(buildInvoice())
	require.NoError(t, err)
	out, err := doc.WriteToString()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "\n  <nitEmisor>123456789</nitEmisor>")
	assert.Contains(t, out, "\n    <actividadEconomica>869010</actividadEconomica>")
}

func TestBuild_EscapaTexto(t *testing.T) {
	inv := buildInvoice()
	inv.ClientName = "Pérez & Hijos <SRL>"
	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)
	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Contains(t, out, "Pérez &amp; Hijos &lt;SRL")
}

func TestBuild_FacturaNula(t *testing.T) {
	_, err := siat.NewXMLBuilderService().Build(nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInvoiceFields)
}
