package transport

import (
	"net/http"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/repository"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLineRequest is one requested line of a checkout
type OrderLineRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=999"`
}

// PlaceOrderRequest is a checkout. Either items or from_cart is given.
type PlaceOrderRequest struct {
	Items           []OrderLineRequest `json:"items" validate:"required_without=FromCart,max=100,dive"`
	FromCart        bool               `json:"from_cart"`
	PaymentMethod   string             `json:"payment_method" validate:"required,oneof=cod bank_transfer card"`
	ShippingName    string             `json:"shipping_name" validate:"required,max=100"`
	ShippingPhone   string             `json:"shipping_phone" validate:"required,max=20"`
	ShippingAddress string             `json:"shipping_address" validate:"required,max=500"`
	VoucherCode     string             `json:"voucher_code" validate:"omitempty,max=50"`
	Note            string             `json:"note" validate:"omitempty,max=1000"`
}

// OrderStatusRequest moves an order along its lifecycle
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipping delivered cancelled"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/orders", h.PlaceOrder)
		r.Get("/api/orders", h.ListMine)
		r.Get("/api/orders/{id}", h.Get)
		r.Post("/api/orders/{id}/cancel", h.Cancel)
	})

	r.Group(func(r chi.Router) {
		adminOnly(r, authMiddleware, h.logger)
		r.Get("/api/orders/all", h.ListAll)
		r.Patch("/api/orders/{id}/status", h.UpdateStatus)
	})
}

// PlaceOrder runs checkout for the caller
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	input := service.PlaceOrderInput{
		FromCart:        req.FromCart,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		VoucherCode:     req.VoucherCode,
		Note:            req.Note,
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, service.OrderLineInput{
			VariantID: uuid.MustParse(line.VariantID),
			Quantity:  line.Quantity,
		})
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to place order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	page := pageFromQuery(r)
	orders, total, err := h.orderService.ListMine(r.Context(), userID, page)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPageResponse(orders, total, page))
}

// Get returns an order of the caller; admins can read any order
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(r.Context(), userID, middleware.IsAdmin(r.Context()), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Cancel lets the owner cancel a pending order
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Cancel(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to cancel order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListAll pages through every order, optionally filtered by status or user_id
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{Page: pageFromQuery(r)}
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		filter.Status = &status
	}
	if raw := q.Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &userID
	}

	orders, total, err := h.orderService.ListAll(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPageResponse(orders, total, filter.Page))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req OrderStatusRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update order status")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
