package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrVoucherInactive     = errors.New("voucher is not active")
	ErrVoucherNotStarted   = errors.New("voucher is not yet valid")
	ErrVoucherExpired      = errors.New("voucher has expired")
	ErrVoucherExhausted    = errors.New("voucher usage limit reached")
	ErrVoucherMinOrder     = errors.New("order subtotal is below the voucher minimum")
	ErrInvalidDiscountType = errors.New("invalid discount type")
)

// DiscountType selects how a voucher value is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Voucher is a discount code
type Voucher struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Code          string          `json:"code" db:"code"`
	Description   string          `json:"description" db:"description"`
	DiscountType  DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`
	MinOrderValue decimal.Decimal `json:"min_order_value" db:"min_order_value"`
	MaxDiscount   decimal.Decimal `json:"max_discount" db:"max_discount"`
	StartDate     time.Time       `json:"start_date" db:"start_date"`
	EndDate       time.Time       `json:"end_date" db:"end_date"`
	UsageLimit    int             `json:"usage_limit" db:"usage_limit"`
	UsedCount     int             `json:"used_count" db:"used_count"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// NormalizeVoucherCode upper-cases and trims a code
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckEligible returns nil if the voucher can be applied to subtotal at now
func (v *Voucher) CheckEligible(subtotal decimal.Decimal, now time.Time) error {
	if !v.IsActive {
		return ErrVoucherInactive
	}
	if now.Before(v.StartDate) {
		return ErrVoucherNotStarted
	}
	if now.After(v.EndDate) {
		return ErrVoucherExpired
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return ErrVoucherExhausted
	}
	if subtotal.LessThan(v.MinOrderValue) {
		return ErrVoucherMinOrder
	}
	return nil
}

// DiscountFor computes the discount for subtotal. It is never negative
// and never larger than subtotal.
func (v *Voucher) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch v.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(v.DiscountValue).Div(decimal.NewFromInt(100))
		if v.MaxDiscount.IsPositive() && discount.GreaterThan(v.MaxDiscount) {
			discount = v.MaxDiscount
		}
	case DiscountFixed:
		discount = v.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount.Round(2)
}

// Validate checks the voucher definition itself
func (v *Voucher) Validate() error {
	switch v.DiscountType {
	case DiscountPercentage:
		if !v.DiscountValue.IsPositive() || v.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return errors.New("percentage discount must be in (0, 100]")
		}
	case DiscountFixed:
		if !v.DiscountValue.IsPositive() {
			return errors.New("fixed discount must be positive")
		}
	default:
		return ErrInvalidDiscountType
	}
	if v.MinOrderValue.IsNegative() || v.MaxDiscount.IsNegative() {
		return errors.New("amounts must not be negative")
	}
	if !v.EndDate.After(v.StartDate) {
		return errors.New("end date must be after start date")
	}
	if v.UsageLimit < 0 {
		return errors.New("usage limit must not be negative")
	}
	return nil
}
