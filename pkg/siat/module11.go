// Package siat: algoritmos del SIAT (Bolivia) para el CUF. Módulo 11 y codificación base 16.

package siat

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/jhoicas/facturacion-siat/internal/domain"
)

// residueDigits tabla residuo -> dígito por variante. Un residuo sin entrada se escribe tal cual.
var residueDigits = map[bool]map[int]string{
	true:  {10: "0"},          // variante decenas: (suma*10) mod 11
	false: {10: "1", 11: "0"}, // variante residuo: suma mod 11
}

// ComputeCheckDigits calcula dígitos de control Módulo 11 sobre una cadena de dígitos decimales.
//
// Se recorre la cadena de derecha a izquierda; el multiplicador arranca en 1, se incrementa antes
// de cada uso y vuelve a 2 cuando supera cycleLimit. Con tensVariant la pasada se repite count veces
// sobre la cadena extendida; sin tensVariant se agrega exactamente un dígito.
// Devuelve solo los dígitos agregados.
func ComputeCheckDigits(digits string, count, cycleLimit int, tensVariant bool) (string, error) {
	if !isDigits(digits) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidNumericInput, digits)
	}
	if cycleLimit < 2 {
		return "", fmt.Errorf("%w: límite de ciclo %d", domain.ErrInvalidNumericInput, cycleLimit)
	}
	if !tensVariant || count < 1 {
		count = 1
	}

	out := digits
	for pass := 0; pass < count; pass++ {
		sum, mult := 0, 1
		for i := len(out) - 1; i >= 0; i-- {
			mult++
			if mult > cycleLimit {
				mult = 2
			}
			sum += int(out[i]-'0') * mult
		}

		var residue int
		if tensVariant {
			residue = (sum * 10) % 11
		} else {
			residue = sum % 11
		}
		d, ok := residueDigits[tensVariant][residue]
		if !ok {
			d = fmt.Sprintf("%d", residue)
		}
		out += d
	}
	return out[len(out)-count:], nil
}

// EncodeHex interpreta digits como entero no negativo de precisión arbitraria y lo devuelve
// en hexadecimal en mayúsculas, sin prefijo.
func EncodeHex(digits string) (string, error) {
	if !isDigits(digits) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidNumericInput, digits)
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidNumericInput, digits)
	}
	return strings.ToUpper(n.Text(16)), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
