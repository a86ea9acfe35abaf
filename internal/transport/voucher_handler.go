package transport

import (
	"net/http"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VoucherRequest creates or updates a discount code
type VoucherRequest struct {
	Code          string          `json:"code" validate:"required,max=50"`
	Description   string          `json:"description" validate:"omitempty,max=500"`
	DiscountType  string          `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"gt=0"`
	MinOrderValue decimal.Decimal `json:"min_order_value" validate:"gte=0"`
	MaxDiscount   decimal.Decimal `json:"max_discount" validate:"gte=0"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
	EndDate       time.Time       `json:"end_date" validate:"required,gtfield=StartDate"`
	UsageLimit    int             `json:"usage_limit" validate:"gte=0"`
	IsActive      *bool           `json:"is_active"`
}

func (req VoucherRequest) input() service.VoucherInput {
	return service.VoucherInput{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  domain.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
}

// ApplyVoucherRequest quotes a code against a cart subtotal
type ApplyVoucherRequest struct {
	Code     string          `json:"code" validate:"required,max=50"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

// VoucherHandler handles HTTP requests for vouchers
type VoucherHandler struct {
	voucherService service.VoucherService
	logger         *zap.Logger
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService service.VoucherService, logger *zap.Logger) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService, logger: logger}
}

// RegisterRoutes registers all voucher routes
func (h *VoucherHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/vouchers", func(r chi.Router) {
		r.With(authMiddleware).Post("/apply", h.Apply)

		r.Group(func(r chi.Router) {
			adminOnly(r, authMiddleware, h.logger)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *VoucherHandler) List(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.voucherService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list vouchers")
		return
	}
	if vouchers == nil {
		vouchers = []*domain.Voucher{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, vouchers)
}

func (h *VoucherHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	voucher, err := h.voucherService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get voucher")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, voucher)
}

func (h *VoucherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req VoucherRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	voucher, err := h.voucherService.Create(r.Context(), req.input())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create voucher")
		return
	}
	h.logger.Info("Voucher created", zap.String("code", voucher.Code))
	middleware.RespondWithJSON(w, http.StatusCreated, voucher)
}

func (h *VoucherHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req VoucherRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	voucher, err := h.voucherService.Update(r.Context(), id, req.input())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update voucher")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, voucher)
}

func (h *VoucherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.voucherService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete voucher")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply returns the discount a code would give; it does not consume a use
func (h *VoucherHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyVoucherRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	quote, err := h.voucherService.Apply(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to apply voucher")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, quote)
}
