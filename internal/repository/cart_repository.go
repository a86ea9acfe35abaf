package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartRepository defines the interface for cart data access
type CartRepository interface {
	ListLines(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error)
	FindItem(ctx context.Context, userID, variantID uuid.UUID) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, variantID uuid.UUID) error
	RemoveVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db DBTX
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db DBTX) CartRepository {
	return &cartRepository{db: db}
}

// ListLines returns the cart of a user with current price and stock, oldest line first
func (r *cartRepository) ListLines(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	query := `
		SELECT v.id, p.id, p.name, p.brand, v.color, v.size, v.image_url, v.current_price,
		       ci.quantity, v.stock, (p.is_active AND v.status <> 'discontinued')
		FROM cart_items ci
		JOIN product_variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	defer rows.Close()

	lines := []*domain.CartLine{}
	for rows.Next() {
		line := &domain.CartLine{}
		err := rows.Scan(
			&line.VariantID,
			&line.ProductID,
			&line.ProductName,
			&line.Brand,
			&line.Color,
			&line.Size,
			&line.ImageURL,
			&line.UnitPrice,
			&line.Quantity,
			&line.Stock,
			&line.Purchasable,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) FindItem(ctx context.Context, userID, variantID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, variant_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND variant_id = $2
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, userID, variantID).Scan(
		&item.ID,
		&item.UserID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// SetQuantity inserts the line or replaces its quantity
func (r *cartRepository) SetQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (id, user_id, variant_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, variant_id) DO UPDATE
		SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, variantID, quantity, time.Now())
	if err != nil {
		if isForeignKeyViolation(err, "fk_cart_items_variant") {
			return ErrVariantNotFound
		}
		return fmt.Errorf("failed to set cart quantity: %w", err)
	}

	return nil
}

func (r *cartRepository) Remove(ctx context.Context, userID, variantID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return expectAffected(result, ErrCartItemNotFound)
}

// RemoveVariants drops the given variants from the cart, ignoring ones that are absent
func (r *cartRepository) RemoveVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}

	ids := make([]string, len(variantIDs))
	for i, id := range variantIDs {
		ids[i] = id.String()
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = ANY($2::uuid[])`, userID, ids)
	if err != nil {
		return fmt.Errorf("failed to remove cart items: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
