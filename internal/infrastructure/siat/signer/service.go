// Firma digital XMLDSig enveloped para facturas del SIAT.
// Agrega <Signature> como último hijo del elemento raíz.

package signer

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/pkg/siat"
)

// DigitalSignatureService firma y verifica documentos. Sin estado; seguro para uso concurrente.
type DigitalSignatureService struct{}

// NewDigitalSignatureService crea el servicio.
func NewDigitalSignatureService() *DigitalSignatureService {
	return &DigitalSignatureService{}
}

// Sign firma doc en el lugar. El documento ya debe venir con su formato final:
// cualquier cambio de espacios después de firmar invalida el digest.
func (s *DigitalSignatureService) Sign(doc *etree.Document, cert tls.Certificate) error {
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return domain.ErrNoPrivateKey
	}
	leaf, err := leafCertificate(cert)
	if err != nil {
		return err
	}
	if doc == nil || doc.Root() == nil {
		return domain.ErrNoRootElement
	}
	root := doc.Root()

	// 1) Digest del documento (enveloped: todavía no existe la firma) en C14N
	canonicalDoc, err := canonicalElement(root, "")
	if err != nil {
		return fmt.Errorf("%w: canonicalizar documento: %w", domain.ErrSignatureFailed, err)
	}
	docDigest := sha256.Sum256(canonicalDoc)

	// 2) SignedInfo canónico firmado con RSA-SHA256
	signedInfo := buildSignedInfo(base64.StdEncoding.EncodeToString(docDigest[:]))
	canonicalSignedInfo, err := canonicalElement(signedInfo, NamespaceDS)
	if err != nil {
		return fmt.Errorf("%w: canonicalizar SignedInfo: %w", domain.ErrSignatureFailed, err)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, signHash[:])
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSignatureFailed, err)
	}

	// 3) Nodo Signature con KeyInfo (certificado completo)
	sig := etree.NewElement("Signature")
	sig.CreateAttr("xmlns", NamespaceDS)
	sig.AddChild(signedInfo)
	sig.CreateElement("SignatureValue").SetText(base64.StdEncoding.EncodeToString(signatureValue))
	sig.CreateElement("KeyInfo").
		CreateElement("X509Data").
		CreateElement("X509Certificate").
		SetText(base64.StdEncoding.EncodeToString(leaf.Raw))

	root.AddChild(sig)
	return nil
}

// SignBytes implementa pkg/siat.Signer: parsea, firma y serializa sin reformatear.
func (s *DigitalSignatureService) SignBytes(xmlBytes []byte, cert tls.Certificate) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("%w: parsear XML: %w", domain.ErrNoRootElement, err)
	}
	if err := s.Sign(doc, cert); err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

func buildSignedInfo(digestB64 string) *etree.Element {
	si := etree.NewElement("SignedInfo")
	si.CreateElement("CanonicalizationMethod").CreateAttr("Algorithm", AlgC14N)
	si.CreateElement("SignatureMethod").CreateAttr("Algorithm", AlgRSASHA256)

	ref := si.CreateElement("Reference")
	ref.CreateAttr("URI", ReferenceURI)
	transforms := ref.CreateElement("Transforms")
	transforms.CreateElement("Transform").CreateAttr("Algorithm", TransformEnveloped)
	transforms.CreateElement("Transform").CreateAttr("Algorithm", AlgC14N)
	ref.CreateElement("DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	ref.CreateElement("DigestValue").SetText(digestB64)
	return si
}

func leafCertificate(cert tls.Certificate) (*x509.Certificate, error) {
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("%w: falta el certificado público", domain.ErrSignatureFailed)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("%w: parsear certificado: %w", domain.ErrSignatureFailed, err)
	}
	return leaf, nil
}

// canonicalElement serializa una copia de el como raíz de un documento nuevo (sin declaración)
// y la pasa por C14N 1.0. Con ns no vacío se declara el namespace que el elemento hereda de
// su padre (SignedInfo dentro de Signature), con o sin prefijo.
func canonicalElement(el *etree.Element, ns string) ([]byte, error) {
	cp := el.Copy()
	switch {
	case ns == "":
	case el.Space != "":
		cp.CreateAttr("xmlns:"+el.Space, ns)
	default:
		cp.CreateAttr("xmlns", ns)
	}
	tmp := etree.NewDocument()
	tmp.SetRoot(cp)
	raw, err := tmp.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return canonicalizeXML(raw)
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

var _ siat.Signer = (*DigitalSignatureService)(nil)
