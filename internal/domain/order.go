package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipping  OrderStatus = "shipping"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipping, OrderCancelled},
	OrderShipping:  {OrderDelivered},
}

// OrderStatuses lists every status in lifecycle order
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderConfirmed, OrderShipping, OrderDelivered, OrderCancelled}
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipping, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentCard:
		return true
	}
	return false
}

// Order is a placed order. Items are snapshots taken at checkout.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount        decimal.Decimal `json:"discount" db:"discount"`
	ShippingFee     decimal.Decimal `json:"shipping_fee" db:"shipping_fee"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method" db:"payment_method"`
	VoucherID       *uuid.UUID      `json:"-" db:"voucher_id"`
	VoucherCode     string          `json:"voucher_code,omitempty" db:"voucher_code"`
	ShippingName    string          `json:"shipping_name" db:"shipping_name"`
	ShippingPhone   string          `json:"shipping_phone" db:"shipping_phone"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	Note            string          `json:"note,omitempty" db:"note"`
	Items           []*OrderItem    `json:"items"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is a line of an order. VariantID is nil once the variant has been deleted.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	VariantID   *uuid.UUID      `json:"variant_id" db:"variant_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Brand       string          `json:"brand" db:"brand"`
	Color       string          `json:"color" db:"color"`
	Size        string          `json:"size" db:"size"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

// LineTotal is unit price times quantity
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// HasVariant reports whether the order contains the given variant
func (o *Order) HasVariant(variantID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.VariantID != nil && *item.VariantID == variantID {
			return true
		}
	}
	return false
}

// ShippingPolicy prices delivery from the order subtotal
type ShippingPolicy struct {
	FlatFee           decimal.Decimal
	FreeShippingAbove decimal.Decimal
}

// Fee returns the shipping fee for a subtotal. A zero threshold disables free shipping.
func (p ShippingPolicy) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeShippingAbove.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingAbove) {
		return decimal.Zero
	}
	return p.FlatFee
}
