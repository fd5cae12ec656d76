package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/facturacion-siat/pkg/config"
	"github.com/jhoicas/facturacion-siat/pkg/jwt"
)

// configLoader permite inyectar la configuración en los tests.
type configLoader func() (*config.Config, error)

func newTokenCmd(load configLoader) *cobra.Command {
	var operator, nit, role string
	var minutes int
	c := &cobra.Command{
		Use:   "token",
		Short: "Emitir un token JWT de operador",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET no está configurado")
			}
			if nit == "" {
				nit = cfg.SIAT.NIT
			}
			if operator == "" || nit == "" {
				return errors.New("--operador y --nit (o SIAT_NIT) son requeridos")
			}
			if role != jwt.RoleAdmin && role != jwt.RoleCashier {
				return fmt.Errorf("rol %q inválido: usar %s o %s", role, jwt.RoleAdmin, jwt.RoleCashier)
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, operator, nit, role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	c.Flags().StringVar(&operator, "operador", "", "Identificador del operador")
	c.Flags().StringVar(&nit, "nit", "", "NIT emisor (env: SIAT_NIT)")
	c.Flags().StringVar(&role, "rol", jwt.RoleCashier, "admin | cajero")
	c.Flags().IntVar(&minutes, "minutos", 0, "Vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	return c
}
