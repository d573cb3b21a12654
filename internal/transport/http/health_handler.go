package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "freightcli/internal/errors"
	"freightcli/internal/services"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	service      *services.HealthService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HealthHandler {
	return &HealthHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "health_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetHealth)
	r.Get("/ready", h.GetReadiness)
	r.Get("/live", h.GetLiveness)
	r.Get("/version", h.GetVersion)

	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// GetReadiness handles GET /api/health/ready
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// GetLiveness handles GET /api/health/live
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// GetVersion handles GET /api/health/version
func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
