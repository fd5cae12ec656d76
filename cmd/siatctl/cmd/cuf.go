package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/siat"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// issuedAtLayout fecha de emisión en hora local de Bolivia, con milisegundos.
const issuedAtLayout = "2006-01-02T15:04:05.000"

// cufInput campos que intervienen en el CUF, con los nombres del XML.
type cufInput struct {
	NIT          string `json:"nitEmisor"`
	IssuedAt     string `json:"fechaEmision"`
	BranchCode   int    `json:"codigoSucursal"`
	Modality     int    `json:"modalidad"`
	EmissionType int    `json:"tipoEmision"`
	InvoiceType  int    `json:"tipoFactura"`
	SectorType   int    `json:"tipoDocumentoSector"`
	Number       int64  `json:"numeroFactura"`
	PointOfSale  *int   `json:"codigoPuntoVenta"`
}

func (in cufInput) invoice() (*entity.Invoice, error) {
	issued, err := time.ParseInLocation(issuedAtLayout, in.IssuedAt, pkgsiat.Location)
	if err != nil {
		return nil, fmt.Errorf("fechaEmision debe tener formato %s: %w", issuedAtLayout, err)
	}
	return &entity.Invoice{
		NIT:          in.NIT,
		IssuedAt:     issued,
		BranchCode:   in.BranchCode,
		Modality:     in.Modality,
		EmissionType: in.EmissionType,
		InvoiceType:  in.InvoiceType,
		SectorType:   in.SectorType,
		Number:       in.Number,
		PointOfSale:  in.PointOfSale,
	}, nil
}

func newCufCmd(opts *options) *cobra.Command {
	var verifyAgainst string
	c := &cobra.Command{
		Use:   "cuf [archivo.json]",
		Short: "Calcular el CUF de una factura",
		Long: `Calcula el Código Único de Factura a partir de un JSON con nitEmisor, fechaEmision
(yyyy-mm-ddTHH:MM:SS.mmm, hora de Bolivia), codigoSucursal, modalidad, tipoEmision,
tipoFactura, tipoDocumentoSector, numeroFactura y codigoPuntoVenta (opcional).
Sin archivo lee de la entrada estándar.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var in cufInput
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				return fmt.Errorf("leer JSON: %w", err)
			}
			inv, err := in.invoice()
			if err != nil {
				return err
			}

			gen := siat.NewCufGeneratorService()
			if base, err := gen.Concatenation(inv); err == nil {
				opts.printVerbose(cmd, "cadena base: %s\n", base)
			}
			if verifyAgainst != "" {
				if !gen.Verify(inv, verifyAgainst) {
					return fmt.Errorf("el CUF %s no corresponde a los datos", verifyAgainst)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "CUF válido")
				return nil
			}
			cuf, err := gen.Generate(inv)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cuf)
			return nil
		},
	}
	c.Flags().StringVar(&verifyAgainst, "verificar", "", "Comprobar este CUF en lugar de imprimir el calculado")
	return c
}
