package transport

import (
	"net/http"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AnalyticsHandler serves the admin dashboard figures
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, logger: logger}
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/analytics", func(r chi.Router) {
		adminOnly(r, authMiddleware, h.logger)
		r.Get("/summary", h.Summary)
		r.Get("/revenue", h.Revenue)
		r.Get("/top-products", h.TopProducts)
		r.Get("/low-stock", h.LowStock)
	})
}

func (h *AnalyticsHandler) dateRange(w http.ResponseWriter, r *http.Request) (service.DateRange, bool) {
	from, err := timeQuery(r, "from")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid from")
		return service.DateRange{}, false
	}
	to, err := timeQuery(r, "to")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid to")
		return service.DateRange{}, false
	}
	return service.DateRange{From: from, To: to}, true
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	summary, err := h.analyticsService.Summary(r.Context(), rng)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compute summary")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	days, err := h.analyticsService.Revenue(r.Context(), rng)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compute revenue")
		return
	}
	if days == nil {
		days = []*domain.DailyRevenue{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, days)
}

func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	products, err := h.analyticsService.TopProducts(r.Context(), rng, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to compute top products")
		return
	}
	if products == nil {
		products = []*domain.ProductSales{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *AnalyticsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := intQuery(r, "threshold")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid threshold")
		return
	}
	variants, err := h.analyticsService.LowStock(r.Context(), threshold)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list low stock variants")
		return
	}
	if variants == nil {
		variants = []*domain.LowStockVariant{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, variants)
}
