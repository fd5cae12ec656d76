package domain

import (
	"errors"
	"fmt"
	"time"
)

// Categorías de error del pipeline de certificación.
var (
	ErrValidation  = errors.New("error de validación")
	ErrCrypto      = errors.New("error criptográfico")
	ErrConcurrency = errors.New("error de concurrencia")
	ErrPersistence = errors.New("error de persistencia")
)

// Errores de dominio (sin dependencias externas). Cada uno envuelve su categoría.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = fmt.Errorf("%w: entrada inválida", ErrValidation)
	ErrDuplicate    = fmt.Errorf("%w: recurso duplicado", ErrPersistence)
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	ErrInvalidNumericInput    = fmt.Errorf("%w: la cadena no es un número decimal", ErrValidation)
	ErrMalformedInvoiceFields = fmt.Errorf("%w: campos de factura mal formados", ErrValidation)
	ErrMissingCUFD            = fmt.Errorf("%w: no hay CUFD vigente para el emisor", ErrValidation)

	ErrCertificateNotFound          = fmt.Errorf("%w: certificado no encontrado", ErrCrypto)
	ErrUnsupportedCertificateFormat = fmt.Errorf("%w: formato de certificado no soportado (usar .p12 o .pfx)", ErrCrypto)
	ErrNoPrivateKey                 = fmt.Errorf("%w: el certificado no contiene llave privada RSA", ErrCrypto)
	ErrCertificateExpired           = fmt.Errorf("%w: certificado vencido o aún no vigente", ErrCrypto)
	ErrInvalidCredentials           = fmt.Errorf("%w: contraseña incorrecta o archivo corrupto", ErrCrypto)
	ErrNoRootElement                = fmt.Errorf("%w: el documento no tiene elemento raíz", ErrCrypto)
	ErrSignatureFailed              = fmt.Errorf("%w: no se pudo calcular la firma", ErrCrypto)

	ErrIllegalTransition = fmt.Errorf("%w: transición de estado no permitida", ErrConcurrency)

	ErrNoIssuerConfiguration = fmt.Errorf("%w: no existe configuración para el emisor", ErrPersistence)
)

// FieldError identifica el campo de la factura que impide la certificación.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrMalformedInvoiceFields }

// NewFieldError construye un FieldError.
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

// CertificateExpiredError lleva la ventana de vigencia para diagnóstico del operador.
type CertificateExpiredError struct {
	NotBefore time.Time
	NotAfter  time.Time
	CheckedAt time.Time
}

func (e *CertificateExpiredError) Error() string {
	return fmt.Sprintf("certificado vencido o aún no vigente: vigente desde %s hasta %s, fecha actual %s",
		e.NotBefore.Format("02/01/2006"), e.NotAfter.Format("02/01/2006"), e.CheckedAt.Format("02/01/2006"))
}

func (e *CertificateExpiredError) Unwrap() error { return ErrCertificateExpired }

// IllegalTransitionError detalla la transición rechazada.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transición de estado no permitida: %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// Category devuelve la categoría (validación, cripto, concurrencia, persistencia) de err, o nil.
func Category(err error) error {
	for _, c := range []error{ErrValidation, ErrCrypto, ErrConcurrency, ErrPersistence} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
