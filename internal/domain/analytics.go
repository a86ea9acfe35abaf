package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary holds headline figures for a period
type SalesSummary struct {
	From              time.Time           `json:"from"`
	To                time.Time           `json:"to"`
	Revenue           decimal.Decimal     `json:"revenue"`
	OrderCount        int                 `json:"order_count"`
	OrdersByStatus    map[OrderStatus]int `json:"orders_by_status"`
	NewCustomers      int                 `json:"new_customers"`
	AverageOrderValue decimal.Decimal     `json:"average_order_value"`
}

// DailyRevenue is revenue of delivered orders for one day
type DailyRevenue struct {
	Day        time.Time       `json:"day"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// ProductSales is the sold quantity of a product
type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// LowStockVariant is a variant whose stock is at or below a threshold
type LowStockVariant struct {
	VariantID   uuid.UUID `json:"variant_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
	Stock       int       `json:"stock"`
}
