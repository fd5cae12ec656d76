// Package siat: interfaz de firma digital XMLDSig de documentos de factura.

package siat

import "crypto/tls"

// Signer firma el XML de una factura y devuelve el XML con el nodo Signature
// agregado como último hijo del elemento raíz (firma enveloped).
type Signer interface {
	SignBytes(xmlBytes []byte, cert tls.Certificate) ([]byte, error)
}
