// Package handlers exposes the dashboard over HTTP: month summaries, soft
// alerts, day capture and background sync runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/finanzas-dev/finanzas/internal/api/middleware"
	"github.com/finanzas-dev/finanzas/internal/document"
	"github.com/finanzas-dev/finanzas/internal/jobs"
	"github.com/finanzas-dev/finanzas/internal/report"
	"github.com/finanzas-dev/finanzas/internal/storage"
)

// DashboardHandler serves reads and capture writes against the local
// document. Mutations are serialized with a mutex: the core model assumes
// exactly one writer.
type DashboardHandler struct {
	store    storage.Store
	defaults document.Defaults
	log      zerolog.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewDashboardHandler creates the handler. now may be nil outside tests.
func NewDashboardHandler(store storage.Store, defaults document.Defaults, log zerolog.Logger, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{store: store, defaults: defaults, log: log, now: now}
}

// load returns the local document, falling back to a fresh skeleton.
func (h *DashboardHandler) load() (*document.Document, error) {
	doc, ok, err := h.store.Read()
	if err != nil {
		return nil, err
	}
	if !ok {
		doc = document.NewSkeleton(h.defaults)
	}
	return doc, nil
}

// GetSummary handles GET /api/summary?month=YYYY-MM. An absent month means
// the current one.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	doc, err := h.load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.now().Format("2006-01")
	}
	middleware.WriteJSON(w, http.StatusOK, report.SummarizeMonth(doc, month))
}

// GetAlerts handles GET /api/alerts.
func (h *DashboardHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	doc, err := h.load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	now := h.now()
	summary := report.SummarizeMonth(doc, now.Format("2006-01"))
	alerts := report.EvaluateAlerts(doc, summary, now)
	if alerts == nil {
		alerts = []report.Alert{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetGoal handles GET /api/goal.
func (h *DashboardHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	doc, err := h.load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	summary := report.SummarizeMonth(doc, h.now().Format("2006-01"))
	progress, enabled := report.EvaluateGoal(doc, summary)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": enabled,
		"goal":    progress,
	})
}

// GetDay handles GET /api/days/{date}.
func (h *DashboardHandler) GetDay(w http.ResponseWriter, r *http.Request, date string) {
	doc, err := h.load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	day := doc.Ledger.Day(date)
	if day == nil {
		middleware.WriteError(w, http.StatusNotFound, "No record for date "+date)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, day)
}

// PutDay handles PUT /api/days/{date}: one capture-form submit.
func (h *DashboardHandler) PutDay(w http.ResponseWriter, r *http.Request, date string) {
	var in document.CaptureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	day := doc.ApplyCapture(date, in, h.now())
	if err := h.store.Write(doc); err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to persist capture")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to persist capture")
		return
	}

	h.log.Info().Str("date", date).Msg("Captured day")
	middleware.WriteJSON(w, http.StatusOK, day)
}

// DeleteDay handles DELETE /api/days/{date}.
func (h *DashboardHandler) DeleteDay(w http.ResponseWriter, r *http.Request, date string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.load()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	if !doc.DeleteDay(date, h.now()) {
		middleware.WriteError(w, http.StatusNotFound, "No record for date "+date)
		return
	}
	if err := h.store.Write(doc); err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to persist deletion")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to persist deletion")
		return
	}

	h.log.Info().Str("date", date).Msg("Deleted day")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"deleted": date})
}

// SyncHandler enqueues sync runs and reports on them.
type SyncHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	fileID    string
	log       zerolog.Logger
}

// NewSyncHandler creates the handler; fileID addresses the remote file.
func NewSyncHandler(publisher jobs.Publisher, store jobs.JobStore, fileID string, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{publisher: publisher, store: store, fileID: fileID, log: log}
}

// EnqueueSync handles POST /api/sync.
func (h *SyncHandler) EnqueueSync(w http.ResponseWriter, r *http.Request) {
	if h.fileID == "" {
		middleware.WriteError(w, http.StatusServiceUnavailable, "No remote file configured")
		return
	}

	job := &jobs.SyncJob{FileID: h.fileID}
	if err := h.publisher.PublishSync(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue sync")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue sync")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Enqueued sync")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}.
func (h *SyncHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs.
func (h *SyncHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListJobs(r.Context(), jobs.JobFilter{Limit: 50})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if list == nil {
		list = []*jobs.SyncJob{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
