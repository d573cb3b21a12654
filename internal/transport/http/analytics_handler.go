package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"freightcli/internal/analytics"
	apierrors "freightcli/internal/errors"
	"freightcli/internal/observability"
	"freightcli/internal/services"
)

var validate = validator.New()

// AnalyticsHandler handles analytics HTTP requests with RFC 7807 compliance
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// filterRequest is the validated filter payload of the query endpoints. An
// empty or absent body means no filtering.
type filterRequest struct {
	Regions    []string `json:"regions" validate:"omitempty,max=100,dive,min=1,max=128"`
	Priorities []string `json:"priorities" validate:"omitempty,max=100,dive,min=1,max=128"`
	Carriers   []string `json:"carriers" validate:"omitempty,max=100,dive,min=1,max=128"`
}

func (f *filterRequest) toFilter() analytics.Filter {
	return analytics.Filter{
		Regions:    f.Regions,
		Priorities: f.Priorities,
		Carriers:   f.Carriers,
	}
}

// Routes returns the analytics routes with proper Chi patterns
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(queryMetrics)

	// Unfiltered aggregations
	r.Get("/key-metrics", h.GetKeyMetrics)
	r.Get("/cost-categories", h.GetCostByCategory)
	r.Get("/trend", h.GetRevenueCostTrend)
	r.Get("/carrier-performance", h.GetCarrierPerformance)
	r.Get("/carrier-scores", h.GetCarrierScores)
	r.Get("/recommendations", h.GetRecommendations)
	r.Get("/sustainability", h.GetSustainability)
	r.Get("/green-benefit", h.GetGreenBenefit)
	r.Get("/warehouses", h.GetWarehouses)
	r.Get("/carriers", h.GetCarriers)

	// Filtered queries take a filter payload
	r.Route("/query", func(r chi.Router) {
		r.Post("/orders", h.QueryOrders)
		r.Post("/leakage", h.QueryLeakage)
		r.Post("/route-heatmap", h.QueryRouteHeatmap)
		r.Post("/cost-waterfall", h.QueryCostWaterfall)
		r.Post("/cost-speed", h.QueryCostSpeed)
	})

	r.Post("/reload", h.Reload)
	r.Post("/export", h.Export)

	return r
}

// queryMetrics counts served queries per endpoint and outcome.
func queryMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := "success"
		if ww.Status() >= http.StatusBadRequest {
			status = "error"
		}
		observability.QueriesTotal.WithLabelValues(r.URL.Path, status).Inc()
	})
}

// decodeFilter parses and validates the filter payload. A missing body is a
// valid empty filter.
func (h *AnalyticsHandler) decodeFilter(w http.ResponseWriter, r *http.Request) (analytics.Filter, bool) {
	var req filterRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "Invalid filter payload"))
			return analytics.Filter{}, false
		}
	}
	if err := validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return analytics.Filter{}, false
	}
	return req.toFilter(), true
}

// respond writes the standard success envelope.
func (h *AnalyticsHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// Reload handles POST /api/analytics/reload
func (h *AnalyticsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "reloading dataset",
		slog.String("request_id", reqID))

	if err := h.service.Reload(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "dataset reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respond(w, r, map[string]interface{}{"reloaded": true})
}

// Export handles POST /api/analytics/export
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ExportReports(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, map[string]interface{}{"exported": true})
}

// GetKeyMetrics handles GET /api/analytics/key-metrics
func (h *AnalyticsHandler) GetKeyMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.KeyMetrics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, metrics)
}

// GetCostByCategory handles GET /api/analytics/cost-categories
func (h *AnalyticsHandler) GetCostByCategory(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.CostByCategory(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, categories)
}

// GetRevenueCostTrend handles GET /api/analytics/trend
func (h *AnalyticsHandler) GetRevenueCostTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.RevenueCostTrend(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, trend)
}

// GetCarrierPerformance handles GET /api/analytics/carrier-performance
func (h *AnalyticsHandler) GetCarrierPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.service.CarrierPerformance(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, perf)
}

// GetCarrierScores handles GET /api/analytics/carrier-scores
func (h *AnalyticsHandler) GetCarrierScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.CarrierScores(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, scores)
}

// GetRecommendations handles GET /api/analytics/recommendations
func (h *AnalyticsHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.Recommendations(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, recs)
}

// GetSustainability handles GET /api/analytics/sustainability?scenario=current|optimized
func (h *AnalyticsHandler) GetSustainability(w http.ResponseWriter, r *http.Request) {
	scenario := r.URL.Query().Get("scenario")

	metrics, err := h.service.SustainabilityMetrics(r.Context(), scenario)
	if err != nil {
		if errors.Is(err, services.ErrInvalidScenario) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("scenario",
				"Scenario must be 'current' or 'optimized'"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, metrics)
}

// GetGreenBenefit handles GET /api/analytics/green-benefit
func (h *AnalyticsHandler) GetGreenBenefit(w http.ResponseWriter, r *http.Request) {
	benefit, err := h.service.GreenLogisticsBenefit(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, benefit)
}

// GetWarehouses handles GET /api/analytics/warehouses
func (h *AnalyticsHandler) GetWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.service.UniqueWarehouses(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, warehouses)
}

// GetCarriers handles GET /api/analytics/carriers
func (h *AnalyticsHandler) GetCarriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := h.service.UniqueCarriers(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, carriers)
}

// QueryOrders handles POST /api/analytics/query/orders
func (h *AnalyticsHandler) QueryOrders(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	orders, err := h.service.Orders(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   orders,
		"count":  len(orders),
	})
}

// QueryLeakage handles POST /api/analytics/query/leakage
func (h *AnalyticsHandler) QueryLeakage(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	leakage, err := h.service.CostLeakage(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, leakage)
}

// QueryRouteHeatmap handles POST /api/analytics/query/route-heatmap
func (h *AnalyticsHandler) QueryRouteHeatmap(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	routes, err := h.service.RouteCostAnalysis(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, routes)
}

// QueryCostWaterfall handles POST /api/analytics/query/cost-waterfall
func (h *AnalyticsHandler) QueryCostWaterfall(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	steps, err := h.service.CostWaterfall(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, steps)
}

// QueryCostSpeed handles POST /api/analytics/query/cost-speed
func (h *AnalyticsHandler) QueryCostSpeed(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}
	points, err := h.service.CostSpeedAnalysis(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.respond(w, r, points)
}
