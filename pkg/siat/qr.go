package siat

import (
	"net/url"
	"strconv"
)

// DefaultQRBaseURL página pública de verificación de facturas del SIN.
const DefaultQRBaseURL = "https://siat.impuestos.gob.bo/consulta/QR"

// QRSize tamaño de impresión: 1 = rollo 80mm, 2 = media carta.
const (
	QRSizeRoll   = 1
	QRSizeLetter = 2
)

// VerificationURL arma la URL que se codifica en el QR de la representación gráfica.
// Con baseURL vacío usa DefaultQRBaseURL.
func VerificationURL(baseURL, nit, cuf string, number int64, size int) string {
	if baseURL == "" {
		baseURL = DefaultQRBaseURL
	}
	q := url.Values{}
	q.Set("nit", nit)
	q.Set("cuf", cuf)
	q.Set("numero", strconv.FormatInt(number, 10))
	q.Set("t", strconv.Itoa(size))
	return baseURL + "?" + q.Encode()
}
