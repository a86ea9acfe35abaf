package transport

import (
	"net/http"

	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRequest creates or renames a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, logger: logger}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			adminOnly(r, authMiddleware, h.logger)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	category, err := h.categoryService.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create category")
		return
	}
	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	category, err := h.categoryService.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete refuses while products still reference the category
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete category")
		return
	}
	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
