package repository

import (
	"context"
	"fmt"
	"time"

	"shoe-store/internal/domain"

	"github.com/shopspring/decimal"
)

// AnalyticsRepository runs the admin reporting queries
type AnalyticsRepository interface {
	Summary(ctx context.Context, from, to time.Time) (*domain.SalesSummary, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]*domain.DailyRevenue, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*domain.ProductSales, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.LowStockVariant, error)
}

type analyticsRepository struct {
	db DBTX
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository
func NewAnalyticsRepository(db DBTX) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Summary counts orders created in [from, to). Revenue only includes delivered orders.
func (r *analyticsRepository) Summary(ctx context.Context, from, to time.Time) (*domain.SalesSummary, error) {
	summary := &domain.SalesSummary{
		From:           from,
		To:             to,
		OrdersByStatus: make(map[domain.OrderStatus]int),
	}
	for _, s := range domain.OrderStatuses() {
		summary.OrdersByStatus[s] = 0
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2 GROUP BY status`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.OrdersByStatus[status] = count
		summary.OrderCount += count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	var delivered int
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status = 'delivered' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&summary.Revenue, &delivered)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if delivered > 0 {
		summary.AverageOrderValue = summary.Revenue.DivRound(decimal.NewFromInt(int64(delivered)), 2)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE role = 'customer' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&summary.NewCustomers)
	if err != nil {
		return nil, fmt.Errorf("failed to count new customers: %w", err)
	}

	return summary, nil
}

// RevenueByDay buckets delivered orders by calendar day (UTC)
func (r *analyticsRepository) RevenueByDay(ctx context.Context, from, to time.Time) ([]*domain.DailyRevenue, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status = 'delivered' AND created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily revenue: %w", err)
	}
	defer rows.Close()

	days := []*domain.DailyRevenue{}
	for rows.Next() {
		d := &domain.DailyRevenue{}
		if err := rows.Scan(&d.Day, &d.Revenue, &d.OrderCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily revenue: %w", err)
		}
		days = append(days, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily revenue: %w", err)
	}

	return days, nil
}

// TopProducts ranks products by units sold in non-cancelled orders
func (r *analyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*domain.ProductSales, error) {
	query := `
		SELECT oi.product_id, MAX(oi.product_name), MAX(oi.brand),
		       SUM(oi.quantity), COALESCE(SUM(oi.unit_price * oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> 'cancelled' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY oi.product_id
		ORDER BY SUM(oi.quantity) DESC, MAX(oi.product_name) ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductSales{}
	for rows.Next() {
		p := &domain.ProductSales{}
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Brand, &p.Quantity, &p.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sales: %w", err)
	}

	return products, nil
}

// LowStock lists non-discontinued variants with stock at or below threshold
func (r *analyticsRepository) LowStock(ctx context.Context, threshold int) ([]*domain.LowStockVariant, error) {
	query := `
		SELECT v.id, p.id, p.name, v.color, v.size, v.stock
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.stock <= $1 AND v.status <> 'discontinued'
		ORDER BY v.stock ASC, p.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	variants := []*domain.LowStockVariant{}
	for rows.Next() {
		v := &domain.LowStockVariant{}
		if err := rows.Scan(&v.VariantID, &v.ProductID, &v.ProductName, &v.Color, &v.Size, &v.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan low stock variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating low stock: %w", err)
	}

	return variants, nil
}
