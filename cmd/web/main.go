package main

import (
	"fmt"
	"os"

	"github.com/de-tools/work-reports/pkg/app"
	"github.com/de-tools/work-reports/pkg/server"
	"github.com/de-tools/work-reports/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for work reports",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the YAML configuration file (defaults and WORKREPORT_* variables otherwise)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := app.NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize report pipeline: %w", err)
	}
	defer a.Close()

	if _, err := a.StartupSweep(ctx); err != nil {
		logger.Error().Err(err).Msg("startup sweep failed")
	}

	logger.Info().
		Str("database", cfg.Database.DbPath).
		Str("storage", cfg.Storage.Driver).
		Msgf("Configuration loaded, serving on %s", cfg.Addr())

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Reports: a.Reports,
			History: a.History,
			Metrics: a.Metrics,
		},
	})
	return api.Start()
}
