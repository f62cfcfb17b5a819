package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/loginbridge/internal/config"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
)

var version = "dev"

func main() {
	// .env es opcional; el entorno real siempre gana
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "loginbridge",
		Short:         "Puente OAuth code -> sesión local",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", envOr("LOGINBRIDGE_CONFIG", "config.yaml"),
		"Archivo YAML de configuración (env LOGINBRIDGE_CONFIG)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		if cfg.App.Version == "dev" {
			cfg.App.Version = version
		}
		env := "dev"
		if cfg.IsProd() {
			env = "prod"
		}
		logger.Init(logger.Config{
			Env:         env,
			Level:       cfg.Log.Level,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
		})
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSettingsCmd(load),
	)
	return root
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
