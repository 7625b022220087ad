// Command export inserts a snapshot of the local ledger into a BigQuery
// table for ad-hoc analysis.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/finanzas-dev/finanzas/internal/config"
	"github.com/finanzas-dev/finanzas/internal/export"
	"github.com/finanzas-dev/finanzas/internal/logger"
	"github.com/finanzas-dev/finanzas/internal/storage"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "finanzas.yaml", "Path to finanzas.yaml")
	project := flag.String("project", os.Getenv("BQ_PROJECT"), "BigQuery project id (or set BQ_PROJECT)")
	dataset := flag.String("dataset", "finanzas", "BigQuery dataset id")
	table := flag.String("table", "ledger_days", "BigQuery table id")
	flag.Parse()

	if *project == "" {
		log.Fatal().Msg("Error: --project is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load config")
		}
		cfg = config.Default()
	}

	doc, ok, err := storage.NewFileStore(cfg.LocalPath).Read()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read local document")
	}
	if !ok {
		log.Fatal().Str("path", cfg.LocalPath).Msg("No local document to export")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := export.Ledger(ctx, *project, *dataset, *table, doc)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	log.Info().
		Int("rows", n).
		Str("table", *project+"."+*dataset+"."+*table).
		Msg("Export finished")
}
