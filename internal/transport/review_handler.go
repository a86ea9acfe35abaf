package transport

import (
	"net/http"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateReviewRequest rates a delivered item of one of the caller's orders
type CreateReviewRequest struct {
	OrderID   string `json:"order_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
	Comment   string `json:"comment" validate:"omitempty,max=2000"`
}

// UpdateReviewRequest edits a review
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// ReviewHandler handles HTTP requests for product reviews
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

// RegisterRoutes registers all review routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/products/{id}/reviews", h.ListByProduct)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/reviews", h.Create)
		r.Get("/api/reviews/mine", h.ListMine)
		r.Put("/api/reviews/{id}", h.Update)
		r.Delete("/api/reviews/{id}", h.Delete)
		r.Get("/api/orders/{id}/reviews", h.ListByOrder)
	})
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	review, err := h.reviewService.Create(r.Context(), userID, service.ReviewInput{
		OrderID:   uuid.MustParse(req.OrderID),
		VariantID: uuid.MustParse(req.VariantID),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create review")
		return
	}
	h.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", review.ProductID.String()),
		zap.Int("rating", review.Rating),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// ListByProduct pages through the reviews of a product, newest first
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	page := pageFromQuery(r)
	reviews, total, err := h.reviewService.ListByProduct(r.Context(), productID, page)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPageResponse(reviews, total, page))
}

func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListMine(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// ListByOrder tells the storefront which items of an order are already reviewed
func (h *ReviewHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListByOrder(r.Context(), userID, middleware.IsAdmin(r.Context()), orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	review, err := h.reviewService.Update(r.Context(), userID, id, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(r.Context(), userID, middleware.IsAdmin(r.Context()), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
