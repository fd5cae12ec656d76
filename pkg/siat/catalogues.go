// Package siat contiene catálogos paramétricos y constantes del SIAT
// (Sistema Integrado de Administración Tributaria, SIN Bolivia).

package siat

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Códigos de cabecera de la factura
// =============================================================================

const (
	EmissionOnline       = 1 // tipoEmisionFactura: en línea
	EmissionOffline      = 2 // fuera de línea (contingencia)
	EmissionMassive      = 3 // masiva
	ModalityElectronic   = 1 // Electrónica en línea
	ModalityComputerized = 2 // Computarizada en línea

	InvoiceTypeWithTaxCredit    = 1 // Con derecho a crédito fiscal
	InvoiceTypeWithoutTaxCredit = 2 // Sin derecho a crédito fiscal

	SectorBuySell        = 1  // Compra venta (servicios)
	SectorTouristService = 12 // Servicios turísticos y hospedaje

	CurrencyBOB = 1
)

// Ambiente de trabajo (codigoAmbiente).
const (
	EnvironmentProduction = 1
	EnvironmentTesting    = 2
)

// =============================================================================
// Catálogo: Tipos de documento de identidad
// =============================================================================

const (
	DocTypeCI  = 1 // Cédula de identidad
	DocTypeCEX = 2 // Cédula de extranjero
	DocTypePAS = 3 // Pasaporte
	DocTypeOD  = 4 // Otro documento
	DocTypeNIT = 5 // NIT
)

var IdentityDocumentTypes = map[int]string{
	DocTypeCI:  "CI - Cédula de Identidad",
	DocTypeCEX: "CEX - Cédula de Identidad de Extranjero",
	DocTypePAS: "PAS - Pasaporte",
	DocTypeOD:  "OD - Otro Documento de Identidad",
	DocTypeNIT: "NIT - Número de Identificación Tributaria",
}

// =============================================================================
// Catálogo: Métodos de pago
// =============================================================================

const (
	PaymentCash         = 1
	PaymentDebitCard    = 2
	PaymentCreditCard   = 3
	PaymentBankTransfer = 5
)

var PaymentMethods = map[int]string{
	1:  "Efectivo",
	2:  "Tarjeta de débito",
	3:  "Tarjeta de crédito",
	4:  "Cheque",
	5:  "Transferencia bancaria",
	6:  "Giro bancario",
	7:  "Depósito bancario",
	8:  "Vale",
	9:  "Otros",
	10: "Tarjeta de débito Master Débito",
	11: "Tarjeta de débito Maestro",
	12: "Bonos",
	13: "Voucher",
}

// =============================================================================
// Catálogo: Unidades de medida (subconjunto sector servicios)
// =============================================================================

const UnitService = 58 // default para facturas de servicios

var UnitsOfMeasure = map[int]string{
	1: "Barril", 2: "Bobina", 3: "Bolsa", 4: "Caja", 5: "Cartón",
	6: "Centímetro", 7: "Centímetro cúbico", 8: "Decímetro cúbico", 9: "Docena", 10: "Envase",
	11: "Fardo", 12: "Frasco", 13: "Galón", 14: "Garrafa", 15: "Gramo",
	16: "Gruesa", 17: "Hectolitro", 18: "Juego", 19: "Kilogramo", 20: "Kilometro",
	21: "Kit", 22: "Lata", 23: "Libra", 24: "Litro", 25: "Metro",
	26: "Metro cúbico", 27: "Metro cuadrado", 28: "Miligramo", 29: "Mililitro", 30: "Milímetro",
	31: "Onza", 32: "Par", 33: "Paquete", 34: "Pieza", 35: "Pulgada",
	36: "Resma", 37: "Rollo", 38: "Set", 39: "Sobre", 40: "Tonelada",
	41: "Tubo", 42: "Unidad", 43: "Vasija", 44: "Pieza dental", 45: "Evento",
	46: "Consulta", 47: "Sesión", 48: "Hora", 49: "Día", 50: "Semana",
	51: "Mes", 52: "Año", 53: "Tratamiento", 54: "Procedimiento", 55: "Kilómetro recorrido",
	56: "Viaje", 57: "Transacción", 58: "Servicio", 59: "Actividad", 60: "Global",
}

// =============================================================================
// Catálogo: Monedas
// =============================================================================

var Currencies = map[int]string{
	1: "Boliviano (BOB)",
	2: "Dólar Americano (USD)",
	3: "Euro (EUR)",
	4: "UFV - Unidad de Fomento a la Vivienda",
}

// =============================================================================
// Leyendas Ley 453 (derechos del consumidor) por actividad económica
// =============================================================================

// LegendAllActivities clave de la leyenda general.
const LegendAllActivities = "TODAS"

var Legends = map[string]string{
	"TODAS":  `"LEY N° 453: EL PROVEEDOR DE SERVICIOS DEBE ENTREGAR ESTA FACTURA AL CONSUMIDOR."`,
	"860000": `"LEY N° 453: EN SERVICIOS DE SALUD, USTED TIENE DERECHO A RECIBIR INFORMACIÓN CLARA SOBRE EL TRATAMIENTO Y COSTOS."`,
	"869000": `"LEY N° 453: EN SERVICIOS DE SALUD, USTED TIENE DERECHO A RECIBIR INFORMACIÓN CLARA SOBRE EL TRATAMIENTO Y COSTOS."`,
	"869010": `"LEY N° 453: EN SERVICIOS DE FISIOTERAPIA, USTED TIENE DERECHO A CONOCER EL PLAN DE TRATAMIENTO Y SU COSTO TOTAL."`,
	"691000": `"LEY N° 453: EN SERVICIOS PROFESIONALES, USTED TIENE DERECHO A RECIBIR CONTRATO ESCRITO Y FACTURA POR LOS SERVICIOS PRESTADOS."`,
	"850000": `"LEY N° 453: EN SERVICIOS EDUCATIVOS, EL ESTABLECIMIENTO DEBE INFORMAR OPORTUNAMENTE SOBRE ARANCELES Y PENALIDADES."`,
	"610000": `"LEY N° 453: EN SERVICIOS DE TELECOMUNICACIONES, USTED TIENE DERECHO A RECIBIR INFORMACIÓN SOBRE TARIFAS Y CONDICIONES DEL SERVICIO."`,
	"691100": `"LEY N° 453: EN SERVICIOS JURÍDICOS, USTED TIENE DERECHO A CONOCER LOS HONORARIOS ANTES DE CONTRATAR EL SERVICIO."`,
	"620000": `"LEY N° 453: EN SERVICIOS DE TECNOLOGÍA, USTED TIENE DERECHO A RECIBIR DOCUMENTACIÓN DEL SERVICIO PRESTADO."`,
	"692000": `"LEY N° 453: EN SERVICIOS CONTABLES, USTED TIENE DERECHO A RECIBIR INFORMES DETALLADOS DEL TRABAJO REALIZADO."`,
	"711000": `"LEY N° 453: EN SERVICIOS DE ARQUITECTURA E INGENIERÍA, USTED TIENE DERECHO A RECIBIR PLANOS Y MEMORIA DESCRIPTIVA."`,
	"452000": `"LEY N° 453: EN SERVICIOS DE MANTENIMIENTO, EL PROVEEDOR DEBE INFORMAR SOBRE EL DIAGNÓSTICO Y PRESUPUESTO PREVIO."`,
	"492000": `"LEY N° 453: EN SERVICIOS DE TRANSPORTE, USTED TIENE DERECHO A CONOCER LAS TARIFAS Y CONDICIONES DEL SERVICIO."`,
}

// LegendFor devuelve la leyenda de la actividad o la general (TODAS) si no hay una específica.
func LegendFor(activityCode string) string {
	if l, ok := Legends[activityCode]; ok {
		return l
	}
	return Legends[LegendAllActivities]
}

// Catalog nombres de catálogo expuestos por la API y el seed.
const (
	CatalogIdentityDocuments = "tipos_documento_identidad"
	CatalogPaymentMethods    = "metodos_pago"
	CatalogUnitsOfMeasure    = "unidades_medida"
	CatalogCurrencies        = "tipos_moneda"
)

// Catalogs agrupa los catálogos numéricos por nombre.
var Catalogs = map[string]map[int]string{
	CatalogIdentityDocuments: IdentityDocumentTypes,
	CatalogPaymentMethods:    PaymentMethods,
	CatalogUnitsOfMeasure:    UnitsOfMeasure,
	CatalogCurrencies:        Currencies,
}

// SortedCodes devuelve los códigos de un catálogo en orden ascendente.
func SortedCodes(catalog map[int]string) []int {
	codes := make([]int, 0, len(catalog))
	for c := range catalog {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// =============================================================================
// IVA
// =============================================================================

var (
	ivaRate    = decimal.NewFromInt(13)
	ivaDivisor = decimal.NewFromInt(113)
)

// IVAIncluded calcula el IVA (13%) contenido en un total que ya lo incluye: total * 13 / 113, 2 decimales.
func IVAIncluded(total decimal.Decimal) decimal.Decimal {
	return total.Mul(ivaRate).Div(ivaDivisor).Round(2)
}
