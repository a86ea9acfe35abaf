package transport

import (
	"net/http"

	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartItemRequest adds a quantity of a variant to the cart
type CartItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=999"`
}

// CartQuantityRequest sets the quantity of a line; 0 removes it
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=999"`
}

// MergeLine is one line of a client-side cart. Bad quantities are dropped
// by the merge rather than rejected.
type MergeLine struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// MergeCartRequest carries a cart kept on the device before login
type MergeCartRequest struct {
	Items []MergeLine `json:"items" validate:"max=200,dive"`
}

// CartHandler handles HTTP requests for the caller's cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{variant_id}", h.SetItem)
		r.Delete("/items/{variant_id}", h.RemoveItem)
		r.Post("/merge", h.Merge)
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	cart, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem adds to an existing line for the same variant
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req CartItemRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	cart, err := h.cartService.AddItem(r.Context(), userID, uuid.MustParse(req.VariantID), req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	variantID, ok := uuidParam(w, r, "variant_id")
	if !ok {
		return
	}
	var req CartQuantityRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	cart, err := h.cartService.SetItem(r.Context(), userID, variantID, *req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	variantID, ok := uuidParam(w, r, "variant_id")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(r.Context(), userID, variantID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to remove cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		respondServiceError(w, h.logger, err, "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Merge reconciles a device cart with the stored one and reports what was
// clamped to stock or dropped
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req MergeCartRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	items := make([]service.CartItemInput, len(req.Items))
	for i, line := range req.Items {
		items[i] = service.CartItemInput{VariantID: uuid.MustParse(line.VariantID), Quantity: line.Quantity}
	}

	result, err := h.cartService.Merge(r.Context(), userID, items)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to merge cart")
		return
	}
	if len(result.Dropped) > 0 || len(result.Clamped) > 0 {
		h.logger.Info("Cart merged with adjustments",
			zap.String("user_id", userID.String()),
			zap.Int("dropped", len(result.Dropped)),
			zap.Int("clamped", len(result.Clamped)),
		)
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}
