package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/mpesa-etl/pkg/logger"
	"github.com/de-tools/mpesa-etl/pkg/server"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/de-tools/mpesa-etl/pkg/services/history"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the M-Pesa ETL run API",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the ETL configuration file (defaults only when empty)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: cfg.Storage.DuckDBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	runHistory, err := history.NewService(db)
	if err != nil {
		return fmt.Errorf("failed to create run history: %w", err)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		return fmt.Errorf("missing server configuration: SERVER_HOST and SERVER_PORT must be set")
	}

	if cfgPath != "" {
		log.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	}
	log.Info().Str("duckdb", cfg.Storage.DuckDBPath).Msg("run store ready")

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Runner:  pipeline.NewOrchestrator(cfg.PipelineSettings(), log),
			History: runHistory,
			Reader:  csvfile.NewReader(cfg.TimeLayout()),
			Logger:  log,
		},
	})

	return api.Start()
}
