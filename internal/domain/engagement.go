package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a cart line. A variant already pins product, color and size,
// so a user has at most one line per variant.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	VariantID uuid.UUID `json:"variant_id" db:"variant_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart item joined with what the storefront shows for it
type CartLine struct {
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Stock       int             `json:"stock"`
	Purchasable bool            `json:"purchasable"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Cart is the full cart of a user
type Cart struct {
	Lines    []*CartLine     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// Review is a rating left by a customer for a variant of a delivered order
type Review struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	VariantID    uuid.UUID `json:"variant_id" db:"variant_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RatingSummary aggregates the reviews of a product
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Message is a chat message between two users
type Message struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SenderID   uuid.UUID `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Conversation is the latest message exchanged with a counterpart
type Conversation struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	LastMessage *Message  `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
}
