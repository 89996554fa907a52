package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/services/shotstack"
)

const maxCallbackBytes = 1 << 20

// Renderer is the render lifecycle surface the handlers drive.
type Renderer interface {
	ApplyCallback(ctx context.Context, cb shotstack.Callback) (jobs.ApplyResult, error)
	Refresh(ctx context.Context, jobID int64) (*jobs.Job, error)
	Resubmit(ctx context.Context, jobID int64) (*jobs.Job, error)
}

// JobReader reads persisted jobs.
type JobReader interface {
	List(ctx context.Context, statuses ...jobs.Status) ([]*jobs.Job, error)
	GetByID(ctx context.Context, id int64) (*jobs.Job, error)
	Stats(ctx context.Context) (map[jobs.Status]int, error)
}

// Options configures the router.
type Options struct {
	Renderer Renderer
	Jobs     JobReader
	// Token guards the job API. The webhook and health endpoints stay open.
	Token  string
	Logger *slog.Logger
}

type handlers struct {
	renderer Renderer
	jobs     JobReader
	logger   *slog.Logger
}

// NewRouter builds the HTTP handler for the daemon.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "api")
	h := &handlers{renderer: opts.Renderer, jobs: opts.Jobs, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(recoverer(logger))
	r.Use(requestLogger(logger))

	r.Get("/health", h.health)
	r.Post("/webhooks/shotstack", h.webhook)
	r.Route("/api/jobs", func(r chi.Router) {
		r.Use(bearerAuth(strings.TrimSpace(opts.Token)))
		r.Get("/", h.listJobs)
		r.Get("/{id}", h.getJob)
		r.Post("/{id}/refresh", h.refreshJob)
		r.Post("/{id}/resubmit", h.resubmitJob)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// webhook records an engine callback. Deliveries that arrive out of order or
// after a terminal status are acknowledged with 202 so the engine does not retry.
func (h *handlers) webhook(w http.ResponseWriter, r *http.Request) {
	var cb shotstack.Callback
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCallbackBytes))
	if err := decoder.Decode(&cb); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid callback payload: "+err.Error())
		return
	}
	res, err := h.renderer.ApplyCallback(r.Context(), cb)
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case err != nil:
		logging.WithContext(r.Context(), h.logger).Error("webhook apply failed", logging.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to record callback")
		return
	}
	status := http.StatusOK
	if res.Ignored {
		status = http.StatusAccepted
	}
	writeJSON(w, status, CallbackResponse{Applied: !res.Ignored, Job: FromJob(res.Job)})
}

func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []jobs.Status
	for _, value := range r.URL.Query()["status"] {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, ok := jobs.ParseStatus(part)
			if !ok {
				writeError(w, r, http.StatusBadRequest, "unknown status "+strconv.Quote(part))
				return
			}
			statuses = append(statuses, status)
		}
	}
	list, err := h.jobs.List(r.Context(), statuses...)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := h.jobs.Stats(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, JobListResponse{Jobs: FromJobs(list), Stats: FromStats(stats)})
}

func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, JobResponse{Job: FromJob(job)})
}

func (h *handlers) refreshJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.renderer.Refresh(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, JobResponse{Job: FromJob(job)})
}

func (h *handlers) resubmitJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.renderer.Resubmit(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrValidation) && !errors.Is(err, services.ErrExternalTool) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, JobResponse{Job: FromJob(job)})
}

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid job id")
		return 0, false
	}
	return id, true
}

// writeServiceError maps error markers onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, jobs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, services.ErrConfiguration):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrExternalTool):
		status = http.StatusBadGateway
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	}
	writeError(w, r, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	id, _ := services.RequestIDFromContext(r.Context())
	writeJSON(w, status, ErrorResponse{Error: message, RequestID: id})
}
