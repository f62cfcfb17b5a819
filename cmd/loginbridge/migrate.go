package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/loginbridge/internal/config"
	"github.com/dropDatabas3/loginbridge/internal/http/server"
)

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas al store configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			conn, err := server.OpenStore(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer conn.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "ok (%s)\n", conn.Name())
			return nil
		},
	}
}
