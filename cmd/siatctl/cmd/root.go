// Package cmd comandos de siatctl: herramientas de operador para CUF, firma, tokens y migraciones.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/facturacion-siat/pkg/config"
)

var version = "1.0.0"

// options flags globales compartidas por los subcomandos.
type options struct {
	verbose bool
}

// NewRootCmd arma el árbol de comandos. Cada llamada devuelve un árbol nuevo (sin estado compartido).
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "siatctl",
		Short: "Herramientas de operador para facturación electrónica SIAT",
		Long: `siatctl agrupa tareas de soporte del servicio de facturación SIAT.

Ejemplos:
  # Calcular el CUF de una factura descrita en JSON
  siatctl cuf factura.json

  # Firmar un XML con el certificado del emisor
  siatctl firmar factura.xml --cert emisor.p12 --password secreto -o firmada.xml

  # Verificar la firma de un XML
  siatctl verificar firmada.xml

  # Emitir un token de operador (usa JWT_SECRET)
  siatctl token --operador caja-01 --nit 123456789 --rol cajero

  # Aplicar migraciones pendientes (usa DB_* o DATABASE_URL)
  siatctl migrar`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Salida detallada")

	root.AddCommand(
		newCufCmd(opts),
		newSignCmd(opts),
		newVerifyCmd(),
		newTokenCmd(config.Load),
		newMigrateCmd(config.Load),
	)
	return root
}

// Execute ejecuta siatctl con los argumentos del proceso.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}
