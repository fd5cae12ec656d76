// Carga del certificado de firma desde un contenedor PKCS#12 (.p12 / .pfx).

package signer

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/jhoicas/facturacion-siat/internal/domain"
)

// acceptedExtensions formatos de contenedor admitidos.
var acceptedExtensions = map[string]bool{".p12": true, ".pfx": true}

// LoadCertificate carga certificado y llave privada RSA desde un .p12/.pfx y valida su vigencia.
//
// Errores:
//   - domain.ErrCertificateNotFound si la ruta no existe
//   - domain.ErrUnsupportedCertificateFormat si la extensión no es .p12 ni .pfx
//   - domain.ErrNoPrivateKey si el contenedor no trae llave RSA
//   - *domain.CertificateExpiredError si la fecha actual está fuera de la vigencia
//   - domain.ErrInvalidCredentials para contraseña incorrecta o archivo corrupto
func LoadCertificate(path, password string) (tls.Certificate, error) {
	if _, err := os.Stat(path); err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s", domain.ErrCertificateNotFound, path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !acceptedExtensions[ext] {
		return tls.Certificate{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedCertificateFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: leer %s: %w", domain.ErrInvalidCredentials, path, err)
	}

	priv, leaf, err := decodeContainer(data, password)
	if err != nil {
		return tls.Certificate{}, err
	}
	if err := CheckValidity(leaf, time.Now()); err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  priv,
		Leaf:        leaf,
	}, nil
}

// CheckValidity devuelve *domain.CertificateExpiredError si now cae fuera de [NotBefore, NotAfter].
func CheckValidity(cert *x509.Certificate, now time.Time) error {
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return &domain.CertificateExpiredError{
			NotBefore: cert.NotBefore,
			NotAfter:  cert.NotAfter,
			CheckedAt: now,
		}
	}
	return nil
}

// decodeContainer intenta pkcs12.Decode (llave + un certificado). Si falla, recorre los bloques
// de pkcs12.ToPEM: así se aceptan contenedores con cadena y se distingue el que no trae llave.
func decodeContainer(data []byte, password string) (*rsa.PrivateKey, *x509.Certificate, error) {
	key, cert, decodeErr := pkcs12.Decode(data, password)
	if decodeErr == nil {
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, nil, fmt.Errorf("%w: llave de tipo %T", domain.ErrNoPrivateKey, key)
		}
		return priv, cert, nil
	}

	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, decodeErr)
	}

	var priv *rsa.PrivateKey
	var certs []*x509.Certificate
	for _, b := range blocks {
		switch {
		case strings.Contains(b.Type, "PRIVATE KEY"):
			k, err := parseRSAKey(b)
			if err != nil {
				return nil, nil, err
			}
			priv = k
		case b.Type == "CERTIFICATE":
			c, err := x509.ParseCertificate(b.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
			}
			certs = append(certs, c)
		}
	}
	if priv == nil {
		return nil, nil, domain.ErrNoPrivateKey
	}
	for _, c := range certs {
		if pub, ok := c.PublicKey.(*rsa.PublicKey); ok && pub.Equal(&priv.PublicKey) {
			return priv, c, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: ningún certificado corresponde a la llave privada", domain.ErrInvalidCredentials)
}

func parseRSAKey(b *pem.Block) (*rsa.PrivateKey, error) {
	if k, err := x509.ParsePKCS1PrivateKey(b.Bytes); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(b.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoPrivateKey, err)
	}
	priv, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: llave de tipo %T", domain.ErrNoPrivateKey, k)
	}
	return priv, nil
}
