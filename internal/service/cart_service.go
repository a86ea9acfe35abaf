package service

import (
	"context"
	"errors"
	"fmt"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reasons a merged line was dropped
const (
	DropUnknownVariant = "unknown_variant"
	DropUnavailable    = "unavailable"
	DropOutOfStock     = "out_of_stock"
)

// CartItemInput is a client-side cart line
type CartItemInput struct {
	VariantID uuid.UUID
	Quantity  int
}

// DroppedItem is a client line that could not be merged
type DroppedItem struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
}

// MergeResult is the merged cart plus what was clamped or dropped
type MergeResult struct {
	Cart    *domain.Cart   `json:"cart"`
	Dropped []*DroppedItem `json:"dropped"`
	Clamped []uuid.UUID    `json:"clamped"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*domain.Cart, error)
	SetItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*domain.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Merge(ctx context.Context, userID uuid.UUID, items []CartItemInput) (*MergeResult, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	variantRepo repository.VariantRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, variantRepo repository.VariantRepository) CartService {
	return &cartService{cartRepo: cartRepo, variantRepo: variantRepo}
}

// BuildCart totals cart lines. Unpurchasable lines are shown but not counted.
func BuildCart(lines []*domain.CartLine) *domain.Cart {
	cart := &domain.Cart{Lines: lines, Subtotal: decimal.Zero}
	for _, line := range lines {
		if !line.Purchasable {
			continue
		}
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal)
		cart.Count += line.Quantity
	}
	return cart
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildCart(lines), nil
}

func (s *cartService) purchasableVariant(ctx context.Context, variantID uuid.UUID) (*domain.ProductVariant, error) {
	vp, err := s.variantRepo.FindWithProduct(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if !vp.ProductActive || !vp.Variant.Purchasable() {
		return nil, ErrVariantUnavailable
	}
	return vp.Variant, nil
}

func (s *cartService) currentQuantity(ctx context.Context, userID, variantID uuid.UUID) (int, error) {
	item, err := s.cartRepo.FindItem(ctx, userID, variantID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return item.Quantity, nil
}

// AddItem adds quantity on top of an existing line
func (s *cartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	variant, err := s.purchasableVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentQuantity(ctx, userID, variantID)
	if err != nil {
		return nil, err
	}

	total := current + quantity
	if total > variant.Stock {
		return nil, fmt.Errorf("%w: only %d left", ErrInsufficientStock, variant.Stock)
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, variantID, total); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// SetItem sets the quantity of a line; zero removes it
func (s *cartService) SetItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, variantID)
	}

	variant, err := s.purchasableVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if quantity > variant.Stock {
		return nil, fmt.Errorf("%w: only %d left", ErrInsufficientStock, variant.Stock)
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, variantID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*domain.Cart, error) {
	if err := s.cartRepo.Remove(ctx, userID, variantID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Clear(ctx, userID)
}

// Merge folds a client cart into the stored one. Quantities for a variant are
// summed with the stored line and clamped to stock.
func (s *cartService) Merge(ctx context.Context, userID uuid.UUID, items []CartItemInput) (*MergeResult, error) {
	requested := make(map[uuid.UUID]int)
	order := []uuid.UUID{}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, seen := requested[item.VariantID]; !seen {
			order = append(order, item.VariantID)
		}
		requested[item.VariantID] += item.Quantity
	}

	result := &MergeResult{Dropped: []*DroppedItem{}, Clamped: []uuid.UUID{}}

	for _, variantID := range order {
		qty := requested[variantID]

		variant, err := s.purchasableVariant(ctx, variantID)
		switch {
		case errors.Is(err, repository.ErrVariantNotFound):
			result.Dropped = append(result.Dropped, &DroppedItem{VariantID: variantID, Quantity: qty, Reason: DropUnknownVariant})
			continue
		case errors.Is(err, ErrVariantUnavailable):
			result.Dropped = append(result.Dropped, &DroppedItem{VariantID: variantID, Quantity: qty, Reason: DropUnavailable})
			continue
		case err != nil:
			return nil, err
		}

		if variant.Stock <= 0 {
			result.Dropped = append(result.Dropped, &DroppedItem{VariantID: variantID, Quantity: qty, Reason: DropOutOfStock})
			continue
		}

		current, err := s.currentQuantity(ctx, userID, variantID)
		if err != nil {
			return nil, err
		}

		total := current + qty
		if total > variant.Stock {
			total = variant.Stock
			result.Clamped = append(result.Clamped, variantID)
		}

		if err := s.cartRepo.SetQuantity(ctx, userID, variantID, total); err != nil {
			return nil, err
		}
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Cart = cart
	return result, nil
}
