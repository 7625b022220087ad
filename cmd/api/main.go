// Command api serves the dashboard HTTP API: month summaries, soft alerts,
// day capture and background sync runs against the remote file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/finanzas-dev/finanzas/internal/api/handlers"
	"github.com/finanzas-dev/finanzas/internal/api/middleware"
	"github.com/finanzas-dev/finanzas/internal/config"
	"github.com/finanzas-dev/finanzas/internal/jobs"
	"github.com/finanzas-dev/finanzas/internal/jobs/inmemory"
	"github.com/finanzas-dev/finanzas/internal/logger"
	"github.com/finanzas-dev/finanzas/internal/reconcile"
	"github.com/finanzas-dev/finanzas/internal/remote"
	"github.com/finanzas-dev/finanzas/internal/remote/drive"
	"github.com/finanzas-dev/finanzas/internal/remote/gcs"
	"github.com/finanzas-dev/finanzas/internal/storage"
	"github.com/finanzas-dev/finanzas/internal/syncer"
)

func main() {
	var (
		port       = flag.String("port", "8080", "HTTP server port")
		configPath = flag.String("config", "finanzas.yaml", "Path to finanzas.yaml")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load config")
		}
		log.Warn().Str("config", *configPath).Msg("No config file, using defaults")
		cfg = config.Default()
	}
	if cfg.Remote.FileID == "" {
		log.Warn().Msg("No remote file id configured - sync will be disabled")
	}

	ctx := context.Background()
	store := storage.NewFileStore(cfg.LocalPath)

	// Job infrastructure for background syncs.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(16, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		syncJob, ok := job.(*jobs.SyncJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		adapter, err := newRemote(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing remote adapter: %w", err)
		}
		svc := &syncer.Service{
			Store:              store,
			Remote:             adapter,
			Merger:             &reconcile.Merger{Defaults: cfg.Defaults()},
			Defaults:           cfg.Defaults(),
			CheckRemoteVersion: cfg.Remote.CheckVersion,
		}

		rep, err := svc.Sync(ctx, syncJob.FileID)
		if err != nil {
			log.Error().Err(err).Str("job_id", syncJob.JobID).Msg("Sync job failed")
			return err
		}
		syncJob.MergedDays = rep.MergedDays
		return nil
	}

	go func() {
		log.Info().Msg("Starting sync worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Sync worker stopped with error")
		}
	}()

	dashboard := handlers.NewDashboardHandler(store, cfg.Defaults(), log, nil)
	syncHandler := handlers.NewSyncHandler(jobQueue, jobStore, cfg.Remote.FileID, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			dashboard.GetSummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/alerts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			dashboard.GetAlerts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/goal", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			dashboard.GetGoal(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/days/", func(w http.ResponseWriter, r *http.Request) {
		date := strings.TrimPrefix(r.URL.Path, "/api/days/")
		if date == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Date is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			dashboard.GetDay(w, r, date)
		case http.MethodPut:
			dashboard.PutDay(w, r, date)
		case http.MethodDelete:
			dashboard.DeleteDay(w, r, date)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.EnqueueSync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			syncHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			syncHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func newRemote(ctx context.Context, cfg *config.Config) (remote.Adapter, error) {
	if cfg.Remote.Backend == "gcs" {
		return gcs.New(ctx)
	}
	return drive.New(ctx)
}
