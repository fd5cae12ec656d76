package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/infrastructure/pdf"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":         "0.00",
		"100":       "100.00",
		"1234.5":    "1,234.50",
		"1234567.5": "1,234,567.50",
		"-1000":     "-1,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.FormatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	pos := 1
	inv := &entity.Invoice{
		NIT:             "123456789",
		Number:          7,
		CUF:             "D83FF05CF3B72639FF37B2733631571A39002E66",
		PointOfSale:     &pos,
		InvoiceType:     pkgsiat.InvoiceTypeWithTaxCredit,
		IssuedAt:        time.Date(2024, 1, 15, 14, 30, 52, 0, pkgsiat.Location),
		ClientName:      "José Pérez",
		ClientDocType:   pkgsiat.DocTypeCI,
		ClientDocNumber: "4567890",
		Total:           decimal.RequireFromString("150.00"),
		TaxableBase:     decimal.RequireFromString("150.00"),
		Legend:          pkgsiat.LegendFor("869010"),
		Details: []entity.InvoiceDetail{
			{ProductCode: "SES-01", Description: "Sesión de fisioterapia", Quantity: decimal.NewFromInt(1),
				UnitOfMeasure: pkgsiat.UnitService, UnitPrice: decimal.NewFromInt(100), Subtotal: decimal.NewFromInt(100)},
			{ProductCode: "EVA-01", Description: "Evaluación", Quantity: decimal.NewFromInt(1),
				UnitOfMeasure: pkgsiat.UnitService, UnitPrice: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(50)},
		},
	}
	issuer := &entity.IssuerConfig{NIT: "123456789", BusinessName: "Centro de Fisioterapia S.R.L."}
	url := pkgsiat.VerificationURL("", inv.NIT, inv.CUF, inv.Number, pkgsiat.QRSizeLetter)

	for name, qr := range map[string]string{"con QR": url, "sin QR": ""} {
		t.Run(name, func(t *testing.T) {
			out, err := pdf.NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), inv, issuer, qr)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
		})
	}
}
