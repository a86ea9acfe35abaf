package transport

import (
	"net/http"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VariantRequest creates or updates a color/size variant.
// An omitted current_price means no markdown.
type VariantRequest struct {
	Color         string          `json:"color" validate:"required,max=50"`
	Size          string          `json:"size" validate:"required,max=10"`
	OriginalPrice decimal.Decimal `json:"original_price" validate:"gt=0"`
	CurrentPrice  decimal.Decimal `json:"current_price" validate:"gte=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	Status        string          `json:"status" validate:"omitempty,oneof=available out_of_stock discontinued"`
}

func (req VariantRequest) input() service.VariantInput {
	return service.VariantInput{
		Color:         req.Color,
		Size:          req.Size,
		OriginalPrice: req.OriginalPrice,
		CurrentPrice:  req.CurrentPrice,
		Stock:         req.Stock,
		Status:        domain.VariantStatus(req.Status),
	}
}

// StockRequest sets the absolute stock of a variant
type StockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

// VariantHandler handles HTTP requests for product variants
type VariantHandler struct {
	variantService service.VariantService
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewVariantHandler creates a new VariantHandler
func NewVariantHandler(variantService service.VariantService, logger *zap.Logger, maxUploadBytes int64) *VariantHandler {
	return &VariantHandler{variantService: variantService, logger: logger, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers all variant routes
func (h *VariantHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/products/{id}/variants", h.ListByProduct)
	r.Get("/api/variants/{id}", h.Get)

	r.Group(func(r chi.Router) {
		adminOnly(r, authMiddleware, h.logger)
		r.Post("/api/products/{id}/variants", h.Create)
		r.Put("/api/variants/{id}", h.Update)
		r.Delete("/api/variants/{id}", h.Delete)
		r.Patch("/api/variants/{id}/stock", h.SetStock)
		r.Post("/api/variants/{id}/image", h.UploadImage)
	})
}

func (h *VariantHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	variants, err := h.variantService.ListByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list variants")
		return
	}
	if variants == nil {
		variants = []*domain.ProductVariant{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, variants)
}

func (h *VariantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	variant, err := h.variantService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get variant")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, variant)
}

func (h *VariantHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req VariantRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	variant, err := h.variantService.Create(r.Context(), productID, req.input())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create variant")
		return
	}
	h.logger.Info("Variant created",
		zap.String("product_id", productID.String()),
		zap.String("variant_id", variant.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, variant)
}

func (h *VariantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req VariantRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	variant, err := h.variantService.Update(r.Context(), id, req.input())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update variant")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, variant)
}

func (h *VariantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.variantService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete variant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStock overwrites the stock level; the status follows it
func (h *VariantHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req StockRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	variant, err := h.variantService.SetStock(r.Context(), id, *req.Stock)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update stock")
		return
	}
	h.logger.Info("Stock updated",
		zap.String("variant_id", id.String()),
		zap.Int("stock", variant.Stock),
		zap.String("status", string(variant.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, variant)
}

// UploadImage replaces the variant image from the multipart field "image"
func (h *VariantHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	file, ok := imageFile(w, r, h.logger, "image", h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	variant, err := h.variantService.UploadImage(r.Context(), id, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to upload image")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, variant)
}
