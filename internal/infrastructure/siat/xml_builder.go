package siat

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
)

// Namespace y nombres del esquema de recepción del SIAT (sector servicios).
const (
	NamespaceSIAT  = "https://siat.impuestos.gob.bo/SIAT"
	RootElement    = "solicitudServicioRecepcionFactura"
	DetailElement  = "detalleFactura"
	IssuedAtLayout = "2006-01-02T15:04:05.000"

	currencyCode = "1"    // Boliviano
	exchangeRate = "1.00" // sin conversión
)

// fieldSpec un nodo del documento: nombre y cómo obtener su valor.
// Un valor vacío o solo espacios no genera nodo; el SIN rechaza nodos vacíos.
type fieldSpec[T any] struct {
	name  string
	value func(T) string
}

// headerFields cabecera en el orden exacto del esquema.
var headerFields = []fieldSpec[*entity.Invoice]{
	{"nitEmisor", func(i *entity.Invoice) string { return i.NIT }},
	{"modalidad", func(i *entity.Invoice) string { return strconv.Itoa(i.Modality) }},
	{"tipoEmisionFactura", func(i *entity.Invoice) string { return strconv.Itoa(i.EmissionType) }},
	{"tipoFactura", func(i *entity.Invoice) string { return strconv.Itoa(i.InvoiceType) }},
	{"tipoDocumentoSector", func(i *entity.Invoice) string { return strconv.Itoa(i.SectorType) }},
	{"codigoSucursal", func(i *entity.Invoice) string { return strconv.Itoa(i.BranchCode) }},
	{"codigoPuntoVenta", func(i *entity.Invoice) string {
		if i.PointOfSale == nil {
			return ""
		}
		return strconv.Itoa(*i.PointOfSale)
	}},
	{"numeroFactura", func(i *entity.Invoice) string { return strconv.FormatInt(i.Number, 10) }},
	{"cuf", func(i *entity.Invoice) string { return i.CUF }},
	{"cufd", func(i *entity.Invoice) string { return i.CUFD }},
	{"fechaEmision", func(i *entity.Invoice) string {
		if i.IssuedAt.IsZero() {
			return ""
		}
		return i.IssuedAt.Format(IssuedAtLayout)
	}},
	{"codigoTipoDocumentoIdentidad", func(i *entity.Invoice) string { return strconv.Itoa(i.ClientDocType) }},
	{"numeroDocumento", func(i *entity.Invoice) string { return i.ClientDocNumber }},
	{"nombreRazonSocial", func(i *entity.Invoice) string { return i.ClientName }},
	{"complemento", func(i *entity.Invoice) string { return i.ClientComplement }},
	{"montoTotal", func(i *entity.Invoice) string { return amount(i.Total) }},
	{"montoTotalSujetoIva", func(i *entity.Invoice) string { return amount(i.TaxableBase) }},
	{"codigoMoneda", func(*entity.Invoice) string { return currencyCode }},
	{"tipoCambio", func(*entity.Invoice) string { return exchangeRate }},
	{"montoTotalMoneda", func(i *entity.Invoice) string { return amount(i.Total) }},
	{"codigoMetodoPago", func(i *entity.Invoice) string { return strconv.Itoa(i.PaymentMethod) }},
	{"leyenda", func(i *entity.Invoice) string { return i.Legend }},
}

// detailFields nodos de cada detalleFactura.
var detailFields = []fieldSpec[*entity.InvoiceDetail]{
	{"actividadEconomica", func(d *entity.InvoiceDetail) string { return d.ActivityCode }},
	{"codigoProductoSin", func(d *entity.InvoiceDetail) string { return strconv.Itoa(d.SINProductCode) }},
	{"codigoProducto", func(d *entity.InvoiceDetail) string { return d.ProductCode }},
	{"descripcion", func(d *entity.InvoiceDetail) string { return d.Description }},
	{"cantidad", func(d *entity.InvoiceDetail) string { return amount(d.Quantity) }},
	{"unidadMedida", func(d *entity.InvoiceDetail) string { return strconv.Itoa(d.UnitOfMeasure) }},
	{"precioUnitario", func(d *entity.InvoiceDetail) string { return amount(d.UnitPrice) }},
	{"subTotal", func(d *entity.InvoiceDetail) string { return amount(d.Subtotal) }},
}

// amount formato invariante: punto decimal, exactamente 2 decimales, sin separador de miles.
func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// XMLBuilderService construye el XML solicitudServicioRecepcionFactura (sin firma).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el documento con sangría de 2 espacios. La sangría se aplica aquí, antes de firmar:
// después de la firma el documento no debe reformatearse.
func (s *XMLBuilderService) Build(inv *entity.Invoice) (*etree.Document, error) {
	if inv == nil {
		return nil, domain.NewFieldError("factura", "es nula")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(RootElement)
	root.CreateAttr("xmlns", NamespaceSIAT)
	writeFields(root, headerFields, inv)

	for i := range inv.Details {
		item := root.CreateElement(DetailElement)
		writeFields(item, detailFields, &inv.Details[i])
	}

	doc.Indent(2)
	return doc, nil
}

func writeFields[T any](parent *etree.Element, specs []fieldSpec[T], src T) {
	for _, f := range specs {
		v := f.value(src)
		if strings.TrimSpace(v) == "" {
			continue
		}
		parent.CreateElement(f.name).SetText(v)
	}
}
