// Package api serves the Chronology REST API under /api/v1.
//
// Errors are returned as {"detail": "..."} with 400 for malformed JSON,
// 404 for unknown projects, records, metrics and datasets, 409 for
// duplicate metric definitions and 422 for invalid input.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chronology/internal/config"
	"chronology/internal/dataset"
	"chronology/internal/logging"
	"chronology/internal/service"
	"chronology/internal/telemetry"
)

// Options tunes the handler.
type Options struct {
	CORSOrigins     []string
	DatasetRowLimit int
	MaxDatasetRows  int
	// Now is the clock used for export filenames.
	Now func() time.Time
}

// Handler holds the dependencies of the route handlers.
type Handler struct {
	svc      *service.Service
	datasets *dataset.Store
	logger   *zap.Logger
	opts     Options
}

// NewHandler returns the API router.
func NewHandler(svc *service.Service, datasets *dataset.Store, logger *zap.Logger, opts Options) http.Handler {
	if opts.DatasetRowLimit <= 0 {
		opts.DatasetRowLimit = dataset.DefaultLimit
	}
	if opts.MaxDatasetRows < opts.DatasetRowLimit {
		opts.MaxDatasetRows = opts.DatasetRowLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &Handler{
		svc:      svc,
		datasets: datasets,
		logger:   logging.OrNop(logger).Named("api"),
		opts:     opts,
	}
	return h.routes()
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoverer(h.logger))
	r.Use(requestLogger(h.logger))
	r.Use(cors(h.opts.CORSOrigins))
	r.Use(telemetry.Middleware(routePattern))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", h.handleRoot)
	r.Get("/healthz", h.handleHealth)

	r.Route(config.APIPrefix, func(r chi.Router) {
		r.Get("/projects", h.handleListProjects)
		r.Post("/projects", h.handleCreateProject)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/", h.handleGetProject)
			r.Put("/", h.handleUpdateProject)
			r.Delete("/", h.handleDeleteProject)

			r.Get("/metrics", h.handleListRecords)
			r.Post("/metrics", h.handleCreateRecord)
			r.Post("/metrics/bulk", h.handleBulk)
			r.Put("/metrics/{metricID}", h.handleUpdateRecord)
			r.Delete("/metrics/{metricID}", h.handleDeleteRecord)

			r.Put("/metrics-config", h.handleReplaceConfig)
			r.Post("/metrics-definitions", h.handleCreateDefinition)
			r.Patch("/metrics-definitions/{metricID}", h.handleUpdateDefinition)
			r.Delete("/metrics-definitions/{metricID}", h.handleDeleteDefinition)

			r.Get("/models", h.handleModels)
			r.Get("/stats", h.handleStats)
			r.Get("/chart", h.handleChart)
			r.Get("/export", h.handleExport)
		})

		r.Get("/datasets", h.handleListDatasets)
		r.Get("/datasets/{datasetID}", h.handleGetDataset)
		r.Get("/datasets/{datasetID}/content", h.handleDatasetContent)
	})
	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Chronology backend is running!")
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    config.AppName,
		"version": config.AppVersion,
	})
}
