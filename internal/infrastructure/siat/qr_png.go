package siat

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Tamaños admitidos para el PNG del QR, en píxeles.
const (
	DefaultQRSize = 256
	MaxQRSize     = 1024
)

// QRCodeService genera el PNG del QR de verificación de la factura.
type QRCodeService struct {
	level qrcode.RecoveryLevel
}

// NewQRCodeService crea el servicio con corrección de errores media (la URL del SIN es corta).
func NewQRCodeService() *QRCodeService {
	return &QRCodeService{level: qrcode.Medium}
}

// PNG codifica content. size <= 0 usa DefaultQRSize; mayor a MaxQRSize se recorta.
func (s *QRCodeService) PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: contenido vacío")
	}
	switch {
	case size <= 0:
		size = DefaultQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	png, err := qrcode.Encode(content, s.level, size)
	if err != nil {
		return nil, fmt.Errorf("qr: codificar: %w", err)
	}
	return png, nil
}
