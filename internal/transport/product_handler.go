package transport

import (
	"net/http"
	"strconv"

	"shoe-store/internal/middleware"
	"shoe-store/internal/repository"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest creates or updates a product. Variants are only read on create.
type ProductRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Brand       string           `json:"brand" validate:"required,max=100"`
	Description string           `json:"description" validate:"omitempty,max=5000"`
	CategoryID  string           `json:"category_id" validate:"required,uuid"`
	IsActive    *bool            `json:"is_active"`
	Variants    []VariantRequest `json:"variants" validate:"omitempty,dive"`
}

func (req ProductRequest) input() service.ProductInput {
	input := service.ProductInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		CategoryID:  uuid.MustParse(req.CategoryID),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	for _, v := range req.Variants {
		input.Variants = append(input.Variants, v.input())
	}
	return input
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	productService service.ProductService
	optionalAuth   func(http.Handler) http.Handler
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler. optionalAuth identifies
// admins on public routes so they can see inactive products.
func NewProductHandler(productService service.ProductService, optionalAuth func(http.Handler) http.Handler, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, optionalAuth: optionalAuth, logger: logger}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if h.optionalAuth != nil {
			r.Use(h.optionalAuth)
		}
		r.Get("/api/products", h.List)
		r.Get("/api/products/brands", h.Brands)
		r.Get("/api/products/{id}", h.Get)
	})

	r.Group(func(r chi.Router) {
		adminOnly(r, authMiddleware, h.logger)
		r.Post("/api/products", h.Create)
		r.Put("/api/products/{id}", h.Update)
		r.Patch("/api/products/{id}/active", h.SetActive)
		r.Delete("/api/products/{id}", h.Delete)
	})
}

// List pages through products. Only admins may list inactive ones.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProductFilter{
		Brand:      q.Get("brand"),
		Query:      q.Get("q"),
		ActiveOnly: true,
		SortBy:     q.Get("sort_by"),
		SortOrder:  repository.ParseSortOrder(q.Get("sort_order")),
		Page:       pageFromQuery(r),
	}
	if middleware.IsAdmin(r.Context()) {
		active, err := strconv.ParseBool(q.Get("active"))
		filter.ActiveOnly = err == nil && active
	}
	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.productService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPageResponse(products, total, filter.Page))
}

func (h *ProductHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.productService.Brands(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list brands")
		return
	}
	if brands == nil {
		brands = []string{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

// Get returns a product with its variants and rating summary
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.productService.Get(r.Context(), id, middleware.IsAdmin(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	detail, err := h.productService.Create(r.Context(), req.input())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create product")
		return
	}
	h.logger.Info("Product created",
		zap.String("product_id", detail.ID.String()),
		zap.Int("variants", len(detail.Variants)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, detail)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	product, err := h.productService.Update(r.Context(), id, req.input())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ActiveRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	if err := h.productService.SetActive(r.Context(), id, *req.IsActive); err != nil {
		respondServiceError(w, h.logger, err, "failed to update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"is_active": *req.IsActive,
	})
}

// Delete removes the product together with its variants and their images
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete product")
		return
	}
	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

