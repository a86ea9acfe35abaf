package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a shoe model. Prices and stock live on its variants.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Brand       string    `json:"brand" db:"brand"`
	Description string    `json:"description" db:"description"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductSummary is a list row: the product plus figures aggregated over its variants.
type ProductSummary struct {
	Product
	CategoryName string          `json:"category_name"`
	MinPrice     decimal.Decimal `json:"min_price"`
	TotalStock   int             `json:"total_stock"`
	VariantCount int             `json:"variant_count"`
}

// VariantStatus is the sale status of a variant
type VariantStatus string

const (
	VariantAvailable    VariantStatus = "available"
	VariantOutOfStock   VariantStatus = "out_of_stock"
	VariantDiscontinued VariantStatus = "discontinued"
)

// Valid reports whether s is a known status
func (s VariantStatus) Valid() bool {
	switch s {
	case VariantAvailable, VariantOutOfStock, VariantDiscontinued:
		return true
	}
	return false
}

// ProductVariant is a color/size SKU of a product with its own price and stock
type ProductVariant struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	Color         string          `json:"color" db:"color"`
	Size          string          `json:"size" db:"size"`
	OriginalPrice decimal.Decimal `json:"original_price" db:"original_price"`
	CurrentPrice  decimal.Decimal `json:"current_price" db:"current_price"`
	Stock         int             `json:"stock" db:"stock"`
	Status        VariantStatus   `json:"status" db:"status"`
	ImageURL      string          `json:"image_url" db:"image_url"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Purchasable reports whether the variant can be put in a cart or order.
func (v *ProductVariant) Purchasable() bool {
	return v.Status != VariantDiscontinued
}

// NormalizeStatus keeps status consistent with stock. Discontinued is left alone.
func (v *ProductVariant) NormalizeStatus() {
	if v.Status == "" {
		v.Status = VariantAvailable
	}
	switch {
	case v.Status == VariantDiscontinued:
	case v.Stock <= 0:
		v.Status = VariantOutOfStock
	default:
		v.Status = VariantAvailable
	}
}

// DiscountPercent is the markdown of the current price against the original price, rounded to an integer
func (v *ProductVariant) DiscountPercent() int64 {
	if !v.OriginalPrice.IsPositive() || v.CurrentPrice.GreaterThanOrEqual(v.OriginalPrice) {
		return 0
	}
	off := v.OriginalPrice.Sub(v.CurrentPrice).Div(v.OriginalPrice).Mul(decimal.NewFromInt(100))
	return off.Round(0).IntPart()
}

// ProductDetail is a product with its variants and review figures
type ProductDetail struct {
	Product
	CategoryName  string            `json:"category_name"`
	Variants      []*ProductVariant `json:"variants"`
	AverageRating float64           `json:"average_rating"`
	ReviewCount   int               `json:"review_count"`
}

// Banner is a storefront promotional image
type Banner struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	LinkURL   string    `json:"link_url" db:"link_url"`
	Position  int       `json:"position" db:"position"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
