package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/facturacion-siat/internal/infrastructure/postgres"
	"github.com/jhoicas/facturacion-siat/pkg/logger"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	var list bool
	c := &cobra.Command{
		Use:   "migrar",
		Short: "Aplicar las migraciones SQL pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				migs, err := postgres.Migrations()
				if err != nil {
					return err
				}
				for _, m := range migs {
					fmt.Fprintln(cmd.OutOrStdout(), m.Version)
				}
				return nil
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})

			pool, err := postgres.NewPool(cmd.Context(), cfg.DB, cfg.App.Name+"-migrar")
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(cmd.Context(), pool, log.Component("migraciones"))
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", v)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&list, "listar", false, "Solo listar las migraciones embebidas")
	return c
}
