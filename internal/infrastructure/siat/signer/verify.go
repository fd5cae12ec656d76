package signer

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// VerificationError motivo por el que una firma no es válida.
type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("firma inválida: %s: %v", e.Reason, e.Err)
	}
	return "firma inválida: " + e.Reason
}

func (e *VerificationError) Unwrap() error { return e.Err }

// ErrSignatureNotFound el documento no tiene nodo Signature XMLDSig.
var ErrSignatureNotFound = errors.New("el documento no contiene firma XMLDSig")

// Verify comprueba la firma enveloped usando solo el certificado incluido en el propio documento.
func (s *DigitalSignatureService) Verify(xmlBytes []byte) bool {
	return s.Check(xmlBytes) == nil
}

// Check es Verify con el motivo del rechazo (nil si la firma es válida).
func (s *DigitalSignatureService) Check(xmlBytes []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return &VerificationError{Reason: "XML mal formado", Err: err}
	}
	root := doc.Root()
	if root == nil {
		return &VerificationError{Reason: "documento sin raíz"}
	}
	sig := findSignature(root)
	if sig == nil {
		return ErrSignatureNotFound
	}

	signedInfo := child(sig, "SignedInfo")
	if signedInfo == nil {
		return &VerificationError{Reason: "falta SignedInfo"}
	}
	if alg, _ := attrOf(child(signedInfo, "SignatureMethod"), "Algorithm"); alg != AlgRSASHA256 {
		return &VerificationError{Reason: "SignatureMethod no soportado: " + alg}
	}
	ref := child(signedInfo, "Reference")
	if uri, ok := attrOf(ref, "URI"); !ok || uri != ReferenceURI {
		return &VerificationError{Reason: "la referencia debe cubrir el documento completo (URI vacío)"}
	}
	digestValue, err := decodeB64(child(ref, "DigestValue"))
	if err != nil {
		return &VerificationError{Reason: "DigestValue", Err: err}
	}
	signatureValue, err := decodeB64(child(sig, "SignatureValue"))
	if err != nil {
		return &VerificationError{Reason: "SignatureValue", Err: err}
	}
	cert, err := embeddedCertificate(sig)
	if err != nil {
		return &VerificationError{Reason: "X509Certificate", Err: err}
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return &VerificationError{Reason: "el certificado no tiene llave pública RSA"}
	}

	// SignedInfo se canonicaliza antes de quitar la firma del árbol.
	canonicalSignedInfo, err := canonicalElement(signedInfo, NamespaceDS)
	if err != nil {
		return &VerificationError{Reason: "canonicalizar SignedInfo", Err: err}
	}

	// Transformación enveloped: el digest se calcula sin el nodo Signature.
	sig.Parent().RemoveChild(sig)
	canonicalDoc, err := canonicalElement(root, "")
	if err != nil {
		return &VerificationError{Reason: "canonicalizar documento", Err: err}
	}
	docDigest := sha256.Sum256(canonicalDoc)
	if subtle.ConstantTimeCompare(docDigest[:], digestValue) != 1 {
		return &VerificationError{Reason: "el digest no coincide: el documento fue modificado"}
	}

	h := sha256.Sum256(canonicalSignedInfo)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], signatureValue); err != nil {
		return &VerificationError{Reason: "SignatureValue no corresponde al certificado", Err: err}
	}
	return nil
}

// findSignature primer elemento Signature en el namespace XMLDSig (recorrido en profundidad).
func findSignature(el *etree.Element) *etree.Element {
	if el.Tag == "Signature" && el.NamespaceURI() == NamespaceDS {
		return el
	}
	for _, c := range el.ChildElements() {
		if found := findSignature(c); found != nil {
			return found
		}
	}
	return nil
}

func child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func attrOf(el *etree.Element, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	a := el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func decodeB64(el *etree.Element) ([]byte, error) {
	if el == nil {
		return nil, errors.New("nodo ausente")
	}
	// El valor puede venir partido en líneas.
	return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(el.Text()), ""))
}

func embeddedCertificate(sig *etree.Element) (*x509.Certificate, error) {
	raw, err := decodeB64(child(child(child(sig, "KeyInfo"), "X509Data"), "X509Certificate"))
	if err != nil {
		return nil, err
	}
	return x509.ParseCertificate(raw)
}
