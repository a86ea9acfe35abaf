package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrVariantNotFound      = errors.New("variant not found")
	ErrVariantAlreadyExists = errors.New("variant with this color and size already exists")
	ErrInvalidVariant       = errors.New("variant violates price or stock constraints")
)

// VariantWithProduct is a variant plus the product fields needed at checkout and in the cart
type VariantWithProduct struct {
	Variant       *domain.ProductVariant
	ProductName   string
	Brand         string
	ProductActive bool
}

// VariantRepository defines the interface for variant data access
type VariantRepository interface {
	Create(ctx context.Context, variant *domain.ProductVariant) error
	Update(ctx context.Context, variant *domain.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error)
	FindWithProduct(ctx context.Context, id uuid.UUID) (*VariantWithProduct, error)
	LockWithProduct(ctx context.Context, id uuid.UUID) (*VariantWithProduct, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error)
	SetStock(ctx context.Context, id uuid.UUID, stock int) (*domain.ProductVariant, error)
	SetImage(ctx context.Context, id uuid.UUID, imageURL string) error
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	ImageReferencedByOrders(ctx context.Context, imageURL string) (bool, error)
}

type variantRepository struct {
	db DBTX
}

// NewVariantRepository creates a new instance of VariantRepository
func NewVariantRepository(db DBTX) VariantRepository {
	return &variantRepository{db: db}
}

const variantColumns = `v.id, v.product_id, v.color, v.size, v.original_price, v.current_price, v.stock, v.status, v.image_url, v.created_at, v.updated_at`

func scanVariant(row interface{ Scan(...interface{}) error }, v *domain.ProductVariant, extra ...interface{}) error {
	dest := []interface{}{
		&v.ID,
		&v.ProductID,
		&v.Color,
		&v.Size,
		&v.OriginalPrice,
		&v.CurrentPrice,
		&v.Stock,
		&v.Status,
		&v.ImageURL,
		&v.CreatedAt,
		&v.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func mapVariantWriteError(err error, action string) error {
	switch {
	case isUniqueViolation(err, "uq_variants_product_color_size"):
		return ErrVariantAlreadyExists
	case isForeignKeyViolation(err, "fk_variants_product"):
		return ErrProductNotFound
	case isCheckViolation(err):
		return ErrInvalidVariant
	}
	return fmt.Errorf("failed to %s variant: %w", action, err)
}

// Create inserts a new variant
func (r *variantRepository) Create(ctx context.Context, variant *domain.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, product_id, color, size, original_price, current_price, stock, status, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.ProductID,
		variant.Color,
		variant.Size,
		variant.OriginalPrice,
		variant.CurrentPrice,
		variant.Stock,
		variant.Status,
		variant.ImageURL,
		variant.CreatedAt,
		variant.UpdatedAt,
	)

	if err != nil {
		return mapVariantWriteError(err, "create")
	}

	return nil
}

// Update changes every mutable field except the image
func (r *variantRepository) Update(ctx context.Context, variant *domain.ProductVariant) error {
	query := `
		UPDATE product_variants
		SET color = $2, size = $3, original_price = $4, current_price = $5, stock = $6, status = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.Color,
		variant.Size,
		variant.OriginalPrice,
		variant.CurrentPrice,
		variant.Stock,
		variant.Status,
		variant.UpdatedAt,
	)

	if err != nil {
		return mapVariantWriteError(err, "update")
	}

	return expectAffected(result, ErrVariantNotFound)
}

// Delete removes a variant
func (r *variantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	return expectAffected(result, ErrVariantNotFound)
}

// FindByID retrieves a variant by ID
func (r *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants v WHERE v.id = $1`

	variant := &domain.ProductVariant{}
	if err := scanVariant(r.db.QueryRowContext(ctx, query, id), variant); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find variant by ID: %w", err)
	}

	return variant, nil
}

// FindWithProduct retrieves a variant joined with its product
func (r *variantRepository) FindWithProduct(ctx context.Context, id uuid.UUID) (*VariantWithProduct, error) {
	return r.findWithProduct(ctx, id, "")
}

// LockWithProduct is FindWithProduct holding a row lock on the variant until the transaction ends
func (r *variantRepository) LockWithProduct(ctx context.Context, id uuid.UUID) (*VariantWithProduct, error) {
	return r.findWithProduct(ctx, id, "FOR UPDATE OF v")
}

func (r *variantRepository) findWithProduct(ctx context.Context, id uuid.UUID, lock string) (*VariantWithProduct, error) {
	query := `
		SELECT ` + variantColumns + `, p.name, p.brand, p.is_active
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
		` + lock

	result := &VariantWithProduct{Variant: &domain.ProductVariant{}}
	err := scanVariant(r.db.QueryRowContext(ctx, query, id), result.Variant,
		&result.ProductName,
		&result.Brand,
		&result.ProductActive,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find variant with product: %w", err)
	}

	return result, nil
}

// ListByProduct retrieves the variants of a product ordered by color then size
func (r *variantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants v WHERE v.product_id = $1 ORDER BY v.color, v.size`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	variants := []*domain.ProductVariant{}
	for rows.Next() {
		variant := &domain.ProductVariant{}
		if err := scanVariant(rows, variant); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, variant)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// SetStock sets an absolute stock level and re-derives the status
func (r *variantRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) (*domain.ProductVariant, error) {
	query := `
		UPDATE product_variants v
		SET stock = $2,
		    status = CASE
		        WHEN v.status = 'discontinued' THEN v.status
		        WHEN $2 = 0 THEN 'out_of_stock'
		        ELSE 'available'
		    END
		WHERE v.id = $1
		RETURNING ` + variantColumns

	variant := &domain.ProductVariant{}
	if err := scanVariant(r.db.QueryRowContext(ctx, query, id, stock), variant); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		if isCheckViolation(err) {
			return nil, ErrInvalidVariant
		}
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}

	return variant, nil
}

// SetImage stores the image URL of a variant
func (r *variantRepository) SetImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE product_variants SET image_url = $2 WHERE id = $1`, id, imageURL)
	if err != nil {
		return fmt.Errorf("failed to set variant image: %w", err)
	}

	return expectAffected(result, ErrVariantNotFound)
}

// DecrementStock takes quantity units only when enough stock is left.
// It reports false without changing anything otherwise.
func (r *variantRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE product_variants
		SET stock = stock - $2,
		    status = CASE WHEN stock - $2 = 0 AND status = 'available' THEN 'out_of_stock' ELSE status END
		WHERE id = $1 AND stock >= $2
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// IncrementStock returns units to stock, e.g. when an order is cancelled
func (r *variantRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE product_variants
		SET stock = stock + $2,
		    status = CASE WHEN status = 'out_of_stock' THEN 'available' ELSE status END
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	return expectAffected(result, ErrVariantNotFound)
}

// ImageReferencedByOrders reports whether an order item snapshot still shows imageURL
func (r *variantRepository) ImageReferencedByOrders(ctx context.Context, imageURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE image_url = $1)`, imageURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check image references: %w", err)
	}
	return exists, nil
}
