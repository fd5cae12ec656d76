package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/facturacion-siat/internal/infrastructure/siat/signer"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

func newSignCmd(opts *options) *cobra.Command {
	var certPath, password, output string
	c := &cobra.Command{
		Use:   "firmar <factura.xml>",
		Short: "Firmar un XML con firma XMLDSig enveloped",
		Long: `Firma el documento con el certificado .p12/.pfx del emisor (RSA-SHA256, C14N).
La contraseña también puede venir de SIAT_CERT_PASSWORD.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if certPath == "" {
				certPath = os.Getenv("SIAT_CERT_PATH")
			}
			if password == "" {
				password = os.Getenv("SIAT_CERT_PASSWORD")
			}
			if certPath == "" {
				return errors.New("--cert es requerido")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cert, err := signer.LoadCertificate(certPath, password)
			if err != nil {
				return err
			}
			opts.printVerbose(cmd, "certificado cargado: %s\n", certPath)

			var s pkgsiat.Signer = signer.NewDigitalSignatureService()
			signed, err := s.SignBytes(data, cert)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(signed)
				return err
			}
			if err := os.WriteFile(output, signed, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "firmado: %s\n", output)
			return nil
		},
	}
	c.Flags().StringVar(&certPath, "cert", "", "Certificado .p12/.pfx (env: SIAT_CERT_PATH)")
	c.Flags().StringVar(&password, "password", "", "Contraseña del certificado (env: SIAT_CERT_PASSWORD)")
	c.Flags().StringVarP(&output, "output", "o", "", "Archivo de salida (por defecto stdout)")
	return c
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verificar <firmada.xml>",
		Short: "Verificar la firma XMLDSig de un documento",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := signer.NewDigitalSignatureService().Check(data); err != nil {
				return fmt.Errorf("firma inválida: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "firma válida")
			return nil
		},
	}
}
