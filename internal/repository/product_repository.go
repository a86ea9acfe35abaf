package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("category does not exist")
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategoryID *uuid.UUID
	Brand      string
	Query      string
	ActiveOnly bool
	SortBy     string
	SortOrder  SortOrder
	Page       Page
}

// sortable columns; anything else falls back to created_at
var productSortFields = map[string]string{
	"name":       "p.name",
	"brand":      "p.brand",
	"created_at": "p.created_at",
	"price":      "MIN(v.current_price)",
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.ProductSummary, int, error)
	Brands(ctx context.Context) ([]string, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, brand, description, category_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.Description,
		product.CategoryID,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err, "fk_products_category") {
			return ErrInvalidCategory
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, brand = $3, description = $4, category_id = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.Description,
		product.CategoryID,
		product.IsActive,
		product.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err, "fk_products_category") {
			return ErrInvalidCategory
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectAffected(result, ErrProductNotFound)
}

// SetActive shows or hides a product in the storefront
func (r *productRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE products SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set product active flag: %w", err)
	}

	return expectAffected(result, ErrProductNotFound)
}

// Delete removes a product. Its variants go with it (ON DELETE CASCADE).
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return expectAffected(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, brand, description, category_id, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.Description,
		&product.CategoryID,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with filtering, pagination, sorting and variant aggregates
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.ProductSummary, int, error) {
	sortExpr, ok := productSortFields[filter.SortBy]
	if !ok {
		sortExpr = productSortFields["created_at"]
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	page := filter.Page
	if page.Size == 0 {
		page = NewPage(1, DefaultPageSize)
	}

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.brand) = LOWER($%d)", argIndex))
		args = append(args, brand)
		argIndex++
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(`(p.name ILIKE $%d ESCAPE '\' OR p.brand ILIKE $%d ESCAPE '\')`, argIndex, argIndex))
		args = append(args, containsPattern(q))
		argIndex++
	}

	if filter.ActiveOnly {
		conditions = append(conditions, "p.is_active = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.brand, p.description, p.category_id, p.is_active, p.created_at, p.updated_at,
		       c.name, COALESCE(MIN(v.current_price), 0), COALESCE(SUM(v.stock), 0), COUNT(v.id)
		FROM products p
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_variants v ON v.product_id = p.id
		%s
		GROUP BY p.id, c.name
		ORDER BY %s %s, p.id
		LIMIT $%d OFFSET $%d
	`, whereClause, sortExpr, sortOrder, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductSummary{}
	for rows.Next() {
		summary := &domain.ProductSummary{}
		err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Brand,
			&summary.Description,
			&summary.CategoryID,
			&summary.IsActive,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.CategoryName,
			&summary.MinPrice,
			&summary.TotalStock,
			&summary.VariantCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// Brands lists the distinct brands of active products
func (r *productRepository) Brands(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT brand FROM products WHERE is_active = TRUE ORDER BY brand`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []string{}
	for rows.Next() {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	return brands, rows.Err()
}
