package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderFilter narrows the admin order listing
type OrderFilter struct {
	Status *domain.OrderStatus
	UserID *uuid.UUID
	Page   Page
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, updatedAt time.Time) error
}

type orderRepository struct {
	db DBTX
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, subtotal, discount, shipping_fee, total, status, payment_method, voucher_id, voucher_code,
	shipping_name, shipping_phone, shipping_address, note, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Subtotal,
		&o.Discount,
		&o.ShippingFee,
		&o.Total,
		&o.Status,
		&o.PaymentMethod,
		&o.VoucherID,
		&o.VoucherCode,
		&o.ShippingName,
		&o.ShippingPhone,
		&o.ShippingAddress,
		&o.Note,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

// Create inserts the order and its items. Call it inside a transaction.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Subtotal,
		order.Discount,
		order.ShippingFee,
		order.Total,
		order.Status,
		order.PaymentMethod,
		order.VoucherID,
		order.VoucherCode,
		order.ShippingName,
		order.ShippingPhone,
		order.ShippingAddress,
		order.Note,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err, "fk_orders_user") {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, variant_id, product_id, product_name, brand, color, size, image_url, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, item := range order.Items {
		item.OrderID = order.ID
		variantID := uuid.NullUUID{}
		if item.VariantID != nil {
			variantID = uuid.NullUUID{UUID: *item.VariantID, Valid: true}
		}

		_, err := r.db.ExecContext(ctx, itemQuery,
			item.ID,
			item.OrderID,
			variantID,
			item.ProductID,
			item.ProductName,
			item.Brand,
			item.Color,
			item.Size,
			item.ImageURL,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// FindForUpdate locks the order row until the surrounding transaction ends
func (r *orderRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *orderRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := r.items(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []*domain.OrderItem{}
	}

	return order, nil
}

// List returns orders newest first with their items
func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.UserID != nil {
		whereClause += fmt.Sprintf(" AND user_id = $%d", argPos)
		args = append(args, *filter.UserID)
		argPos++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page
	if page.Size == 0 {
		page = NewPage(1, DefaultPageSize)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argPos, argPos+1)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	ids := []uuid.UUID{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, order := range orders {
		order.Items = items[order.ID]
		if order.Items == nil {
			order.Items = []*domain.OrderItem{}
		}
	}

	return orders, total, nil
}

func (r *orderRepository) items(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]*domain.OrderItem, error) {
	result := make(map[uuid.UUID][]*domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, order_id, variant_id, product_id, product_name, brand, color, size, image_url, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY product_name, color, size
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.OrderItem{}
		var variantID uuid.NullUUID
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&variantID,
			&item.ProductID,
			&item.ProductName,
			&item.Brand,
			&item.Color,
			&item.Size,
			&item.ImageURL,
			&item.UnitPrice,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if variantID.Valid {
			id := variantID.UUID
			item.VariantID = &id
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return expectAffected(result, ErrOrderNotFound)
}
