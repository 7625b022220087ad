// Command sync runs one synchronization of the local finance document
// against the configured remote file: download, merge, persist, upload.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/finanzas-dev/finanzas/internal/config"
	"github.com/finanzas-dev/finanzas/internal/document"
	"github.com/finanzas-dev/finanzas/internal/logger"
	"github.com/finanzas-dev/finanzas/internal/reconcile"
	"github.com/finanzas-dev/finanzas/internal/remote"
	"github.com/finanzas-dev/finanzas/internal/remote/drive"
	"github.com/finanzas-dev/finanzas/internal/remote/gcs"
	"github.com/finanzas-dev/finanzas/internal/storage"
	"github.com/finanzas-dev/finanzas/internal/syncer"
)

func main() {
	log := logger.New()

	configPath := flag.String("config", "finanzas.yaml", "Path to finanzas.yaml")
	fileID := flag.String("file-id", "", "Remote file id (overrides config)")
	checkVersion := flag.Bool("check-version", false, "Fail the upload if the remote changed since download")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load config")
		}
		log.Warn().Str("config", *configPath).Msg("No config file, using defaults")
		cfg = config.Default()
	}
	if *fileID != "" {
		cfg.Remote.FileID = *fileID
	}
	if *checkVersion {
		cfg.Remote.CheckVersion = true
	}
	if cfg.Remote.FileID == "" {
		log.Fatal().Msg("Error: no remote file id configured (set remote.file_id or --file-id)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	adapter, err := newRemote(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize remote adapter")
	}

	svc := &syncer.Service{
		Store:              storage.NewFileStore(cfg.LocalPath),
		Remote:             adapter,
		Merger:             &reconcile.Merger{Defaults: cfg.Defaults()},
		Defaults:           cfg.Defaults(),
		CheckRemoteVersion: cfg.Remote.CheckVersion,
	}

	rep, err := svc.Sync(ctx, cfg.Remote.FileID)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	cfg.LastSyncAt = document.FormatTimestamp(rep.FinishedAt)
	if err := config.Save(*configPath, cfg); err != nil {
		log.Warn().Err(err).Msg("Failed to record last sync time")
	}

	log.Info().
		Int("merged_days", rep.MergedDays).
		Str("version_tag", rep.VersionTag).
		Msg("Sync finished")
}

func newRemote(ctx context.Context, cfg *config.Config) (remote.Adapter, error) {
	if cfg.Remote.Backend == "gcs" {
		return gcs.New(ctx)
	}
	return drive.New(ctx)
}
