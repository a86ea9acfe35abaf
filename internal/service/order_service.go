package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderLineInput is a requested order line
type OrderLineInput struct {
	VariantID uuid.UUID
	Quantity  int
}

// PlaceOrderInput is a checkout request. FromCart takes the lines from the stored cart.
type PlaceOrderInput struct {
	Items           []OrderLineInput
	FromCart        bool
	PaymentMethod   domain.PaymentMethod
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	VoucherCode     string
	Note            string
}

// OrderService defines the interface for order business logic
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error)
	Get(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*domain.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, page repository.Page) ([]*domain.Order, int, error)
	ListAll(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	txManager repository.TxManager
	shipping  domain.ShippingPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	txManager repository.TxManager,
	shipping domain.ShippingPolicy,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		txManager: txManager,
		shipping:  shipping,
		logger:    logger,
		now:       time.Now,
	}
}

func validatePlaceOrder(input *PlaceOrderInput) error {
	if !input.PaymentMethod.Valid() {
		return fmt.Errorf("%w: payment_method must be one of cod, bank_transfer, card", ErrInvalidInput)
	}
	input.ShippingName = strings.TrimSpace(input.ShippingName)
	input.ShippingPhone = strings.TrimSpace(input.ShippingPhone)
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	if input.ShippingName == "" || input.ShippingPhone == "" || input.ShippingAddress == "" {
		return fmt.Errorf("%w: shipping name, phone and address are required", ErrInvalidInput)
	}
	if !input.FromCart && len(input.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
	}
	return nil
}

// consolidateLines sums quantities per variant and sorts by id so that
// concurrent checkouts lock rows in the same order
func consolidateLines(items []OrderLineInput) []OrderLineInput {
	byVariant := make(map[uuid.UUID]int)
	for _, item := range items {
		byVariant[item.VariantID] += item.Quantity
	}

	lines := make([]OrderLineInput, 0, len(byVariant))
	for id, qty := range byVariant {
		lines = append(lines, OrderLineInput{VariantID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].VariantID.String() < lines[j].VariantID.String()
	})
	return lines
}

// PlaceOrder reserves stock, applies the voucher and stores the order atomically
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error) {
	if err := validatePlaceOrder(&input); err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          domain.OrderPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingName:    input.ShippingName,
		ShippingPhone:   input.ShippingPhone,
		ShippingAddress: input.ShippingAddress,
		Note:            strings.TrimSpace(input.Note),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.txManager.WithinTx(ctx, func(r repository.TxRepositories) error {
		requested := input.Items
		if input.FromCart {
			cartLines, err := r.Cart().ListLines(ctx, userID)
			if err != nil {
				return err
			}
			requested = make([]OrderLineInput, 0, len(cartLines))
			for _, line := range cartLines {
				requested = append(requested, OrderLineInput{VariantID: line.VariantID, Quantity: line.Quantity})
			}
		}
		lines := consolidateLines(requested)
		if len(lines) == 0 {
			return fmt.Errorf("%w: order has no items", ErrInvalidInput)
		}

		subtotal := decimal.Zero
		purchased := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			vp, err := r.Variants().LockWithProduct(ctx, line.VariantID)
			if err != nil {
				if errors.Is(err, repository.ErrVariantNotFound) {
					return fmt.Errorf("%w: %s", ErrVariantUnavailable, line.VariantID)
				}
				return err
			}
			if !vp.ProductActive || !vp.Variant.Purchasable() {
				return fmt.Errorf("%w: %s %s/%s", ErrVariantUnavailable, vp.ProductName, vp.Variant.Color, vp.Variant.Size)
			}

			ok, err := r.Variants().DecrementStock(ctx, line.VariantID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s %s/%s has %d left", ErrInsufficientStock,
					vp.ProductName, vp.Variant.Color, vp.Variant.Size, vp.Variant.Stock)
			}

			variantID := vp.Variant.ID
			item := &domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				VariantID:   &variantID,
				ProductID:   vp.Variant.ProductID,
				ProductName: vp.ProductName,
				Brand:       vp.Brand,
				Color:       vp.Variant.Color,
				Size:        vp.Variant.Size,
				ImageURL:    vp.Variant.ImageURL,
				UnitPrice:   vp.Variant.CurrentPrice,
				Quantity:    line.Quantity,
			}
			order.Items = append(order.Items, item)
			subtotal = subtotal.Add(item.LineTotal())
			purchased = append(purchased, variantID)
		}

		order.Subtotal = subtotal
		order.Discount = decimal.Zero

		if code := domain.NormalizeVoucherCode(input.VoucherCode); code != "" {
			voucher, err := r.Vouchers().FindByCodeForUpdate(ctx, code)
			if err != nil {
				return err
			}
			if err := voucher.CheckEligible(subtotal, now); err != nil {
				return err
			}
			ok, err := r.Vouchers().IncrementUsage(ctx, voucher.ID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrVoucherExhausted
			}
			voucherID := voucher.ID
			order.VoucherID = &voucherID
			order.VoucherCode = voucher.Code
			order.Discount = voucher.DiscountFor(subtotal)
		}

		order.ShippingFee = s.shipping.Fee(subtotal)
		order.Total = subtotal.Sub(order.Discount).Add(order.ShippingFee)

		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}

		if input.FromCart {
			return r.Cart().RemoveVariants(ctx, userID, purchased)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

// Get returns an order to its owner or an admin. Others see not found.
func (s *orderService) Get(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID, page repository.Page) ([]*domain.Order, int, error) {
	return s.orderRepo.List(ctx, repository.OrderFilter{UserID: &userID, Page: page})
}

func (s *orderService) ListAll(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *filter.Status)
	}
	return s.orderRepo.List(ctx, filter)
}

// Cancel lets the owner cancel a pending order
func (s *orderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order
	err := s.txManager.WithinTx(ctx, func(r repository.TxRepositories) error {
		var err error
		order, err = r.Orders().FindForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return repository.ErrOrderNotFound
		}
		if order.Status != domain.OrderPending {
			return ErrOrderNotCancellable
		}
		return s.transition(ctx, r, order, domain.OrderCancelled)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled by customer", zap.String("order_id", orderID.String()))
	return order, nil
}

// UpdateStatus moves an order along its lifecycle
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	var order *domain.Order
	err := s.txManager.WithinTx(ctx, func(r repository.TxRepositories) error {
		var err error
		order, err = r.Orders().FindForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, status)
		}
		return s.transition(ctx, r, order, status)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(status)),
	)
	return order, nil
}

// transition persists the new status. Cancelling returns stock and the voucher use.
func (s *orderService) transition(ctx context.Context, r repository.TxRepositories, order *domain.Order, status domain.OrderStatus) error {
	if status == domain.OrderCancelled {
		for _, item := range order.Items {
			if item.VariantID == nil {
				continue
			}
			err := r.Variants().IncrementStock(ctx, *item.VariantID, item.Quantity)
			if err != nil && !errors.Is(err, repository.ErrVariantNotFound) {
				return err
			}
		}
		if order.VoucherID != nil {
			if err := r.Vouchers().DecrementUsage(ctx, *order.VoucherID); err != nil {
				return err
			}
		}
	}

	order.Status = status
	order.UpdatedAt = s.now()
	return r.Orders().UpdateStatus(ctx, order.ID, status, order.UpdatedAt)
}
