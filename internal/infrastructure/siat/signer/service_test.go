package signer_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
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
	"github.com/jhoicas/facturacion-siat/internal/infrastructure/siat/signer"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// newTestCertificate genera un certificado RSA autofirmado en memoria.
func newTestCertificate(t *testing.T, cn string) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn, Country: []string{"BO"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}
}

func buildDocument(t *testing.T) *etree.Document {
	t.Helper()
	inv := &entity.Invoice{
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
		Total:           decimal.RequireFromString("100.00"),
		TaxableBase:     decimal.RequireFromString("100.00"),
		PaymentMethod:   1,
		Legend:          `"LEY N° 453: EL PROVEEDOR DE SERVICIOS DEBE ENTREGAR ESTA FACTURA AL CONSUMIDOR."`,
		Details: []entity.InvoiceDetail{{
			ActivityCode:   "869010",
			SINProductCode: 86901,
			Description:    "Sesión de fisioterapia",
			Quantity:       decimal.NewFromInt(1),
			UnitOfMeasure:  58,
			UnitPrice:      decimal.RequireFromString("100.00"),
			Subtotal:       decimal.RequireFromString("100.00"),
		}},
	}
	doc, err := siat.NewXMLBuilderService().Build(inv)
	require.NoError(t, err)
	return doc
}

func signedBytes(t *testing.T, cert tls.Certificate) []byte {
	t.Helper()
	svc := signer.NewDigitalSignatureService()
	doc := buildDocument(t)
	require.NoError(t, svc.Sign(doc, cert))
	out, err := doc.WriteToBytes()
	require.NoError(t, err)
	return out
}

func loadFixture(t *testing.T) tls.Certificate {
	t.Helper()
	cert, err := signer.LoadCertificate(fixture("emisor.p12"), testPassword)
	require.NoError(t, err)
	return cert
}

// ──────────────────────────────────────────────────────────────────────────────
// Sign
// ──────────────────────────────────────────────────────────────────────────────

func TestSign_EstructuraDeLaFirma(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	doc := buildDocument(t)
	cert := loadFixture(t)
	require.NoError(t, svc.Sign(doc, cert))

	children := doc.Root().ChildElements()
	last := children[len(children)-1]
	assert.Equal(t, "Signature", last.Tag, "la firma es el último hijo de la raíz")
	assert.Equal(t, signer.NamespaceDS, last.NamespaceURI())

	si := last.SelectElement("SignedInfo")
	require.NotNil(t, si)
	assert.Equal(t, signer.AlgC14N, si.SelectElement("CanonicalizationMethod").SelectAttrValue("Algorithm", ""))
	assert.Equal(t, signer.AlgRSASHA256, si.SelectElement("SignatureMethod").SelectAttrValue("Algorithm", ""))

	ref := si.SelectElement("Reference")
	require.NotNil(t, ref)
	uri := ref.SelectAttr("URI")
	require.NotNil(t, uri)
	assert.Equal(t, "", uri.Value)

	transforms := ref.SelectElement("Transforms").SelectElements("Transform")
	require.Len(t, transforms, 2)
	assert.Equal(t, signer.TransformEnveloped, transforms[0].SelectAttrValue("Algorithm", ""))
	assert.Equal(t, signer.AlgC14N, transforms[1].SelectAttrValue("Algorithm", ""))
	assert.Equal(t, signer.AlgSHA256, ref.SelectElement("DigestMethod").SelectAttrValue("Algorithm", ""))

	certText := last.FindElement("KeyInfo/X509Data/X509Certificate").Text()
	raw, err := base64.StdEncoding.DecodeString(certText)
	require.NoError(t, err)
	assert.Equal(t, cert.Leaf.Raw, raw, "se incluye el certificado completo")
}

func TestSign_SinLlavePrivadaRSA(t *testing.T) {
	svc := signer.NewDigitalSignatureService()

	err := svc.Sign(buildDocument(t), tls.Certificate{})
	assert.ErrorIs(t, err, domain.ErrNoPrivateKey)

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	cert := loadFixture(t)
	cert.PrivateKey = ecKey
	assert.ErrorIs(t, svc.Sign(buildDocument(t), cert), domain.ErrNoPrivateKey)
}

func TestSign_SinRaiz(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	cert := newTestCertificate(t, "Sin Raiz")
	assert.ErrorIs(t, svc.Sign(etree.NewDocument(), cert), domain.ErrNoRootElement)
	assert.ErrorIs(t, svc.Sign(nil, cert), domain.ErrNoRootElement)
}

// ──────────────────────────────────────────────────────────────────────────────
// Verify
// ──────────────────────────────────────────────────────────────────────────────

func TestVerify_RoundTripConFixture(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, loadFixture(t))
	assert.NoError(t, svc.Check(out))
	assert.True(t, svc.Verify(out))
}

func TestVerify_RoundTripCertificadoGenerado(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, newTestCertificate(t, "Emisor Generado"))
	assert.True(t, svc.Verify(out))
}

func TestVerify_SinFirma(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out, err := buildDocument(t).WriteToBytes()
	require.NoError(t, err)

	assert.False(t, svc.Verify(out))
	assert.ErrorIs(t, svc.Check(out), signer.ErrSignatureNotFound)
	assert.False(t, svc.Verify([]byte("no es xml <")))
	assert.False(t, svc.Verify(nil))
}

func TestVerify_MontoAlterado(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, loadFixture(t))

	tampered := bytes.Replace(out, []byte("<montoTotal>100.00<"), []byte("<montoTotal>900.00<"), 1)
	require.NotEqual(t, out, tampered)
	assert.False(t, svc.Verify(tampered))
	assert.ErrorContains(t, svc.Check(tampered), "digest")
}

func TestVerify_CualquierByteDelContenidoFirmado(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, newTestCertificate(t, "Emisor Bytes"))

	start := bytes.Index(out, []byte("<solicitudServicioRecepcionFactura"))
	end := bytes.Index(out, []byte("<Signature"))
	require.True(t, start >= 0 && end > start)

	for i := start; i < end; i++ {
		tampered := append([]byte(nil), out...)
		tampered[i] ^= 0x01
		assert.False(t, svc.Verify(tampered), "byte %d (%q) alterado no debe verificar", i, out[i])
	}
}

func TestVerify_SignatureValueAlterado(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, loadFixture(t))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	sv := doc.FindElement("//SignatureValue")
	require.NotNil(t, sv)
	raw, err := base64.StdEncoding.DecodeString(sv.Text())
	require.NoError(t, err)
	raw[0] ^= 0xFF
	sv.SetText(base64.StdEncoding.EncodeToString(raw))
	tampered, err := doc.WriteToBytes()
	require.NoError(t, err)

	assert.False(t, svc.Verify(tampered))
}

func TestVerify_DigestValueAlterado(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, loadFixture(t))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	dv := doc.FindElement("//DigestValue")
	require.NotNil(t, dv)
	dv.SetText(base64.StdEncoding.EncodeToString(make([]byte, 32)))
	tampered, err := doc.WriteToBytes()
	require.NoError(t, err)

	assert.False(t, svc.Verify(tampered))
}

func TestVerify_CertificadoReemplazado(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	out := signedBytes(t, loadFixture(t))
	other := newTestCertificate(t, "Intruso")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	x := doc.FindElement("//X509Certificate")
	require.NotNil(t, x)
	x.SetText(base64.StdEncoding.EncodeToString(other.Leaf.Raw))
	tampered, err := doc.WriteToBytes()
	require.NoError(t, err)

	assert.False(t, svc.Verify(tampered), "la firma no corresponde a la llave pública embebida")
}

func TestVerify_FirmarDosVecesInvalidaLaPrimera(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	cert := loadFixture(t)
	doc := buildDocument(t)
	require.NoError(t, svc.Sign(doc, cert))
	require.NoError(t, svc.Sign(doc, cert))

	out, err := doc.WriteToBytes()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(out), "<Signature "))
	assert.False(t, svc.Verify(out))
}

func TestVerify_ReformatearDespuesDeFirmarInvalida(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	doc := buildDocument(t)
	require.NoError(t, svc.Sign(doc, loadFixture(t)))

	doc.Indent(4)
	out, err := doc.WriteToBytes()
	require.NoError(t, err)
	assert.False(t, svc.Verify(out))
}

// ──────────────────────────────────────────────────────────────────────────────
// SignBytes
// ──────────────────────────────────────────────────────────────────────────────

func TestSignBytes_RoundTrip(t *testing.T) {
	svc := signer.NewDigitalSignatureService()
	unsigned, err := buildDocument(t).WriteToBytes()
	require.NoError(t, err)

	out, err := svc.SignBytes(unsigned, loadFixture(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)))
	assert.True(t, svc.Verify(out))
}
