package domain

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activeVoucher(discountType DiscountType, value int64) *Voucher {
	now := time.Now()
	return &Voucher{
		Code:          "SALE",
		DiscountType:  discountType,
		DiscountValue: decimal.NewFromInt(value),
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		IsActive:      true,
	}
}

// Property: a discount is never negative and never exceeds the subtotal
func TestProperty_DiscountIsBoundedBySubtotal(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("0 <= discount <= subtotal", prop.ForAll(
		func(subtotal int64, value int64, percentage bool, maxDiscount int64) bool {
			v := activeVoucher(DiscountFixed, value)
			if percentage {
				v.DiscountType = DiscountPercentage
			}
			v.MaxDiscount = decimal.NewFromInt(maxDiscount)

			amount := decimal.NewFromInt(subtotal)
			discount := v.DiscountFor(amount)

			return !discount.IsNegative() && discount.LessThanOrEqual(amount)
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(1, 100),
		gen.Bool(),
		gen.Int64Range(0, 50_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: a percentage discount honours its cap
func TestProperty_PercentageDiscountRespectsCap(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("discount <= max_discount when capped", prop.ForAll(
		func(subtotal int64, percent int64, maxDiscount int64) bool {
			v := activeVoucher(DiscountPercentage, percent)
			v.MaxDiscount = decimal.NewFromInt(maxDiscount)

			return v.DiscountFor(decimal.NewFromInt(subtotal)).LessThanOrEqual(v.MaxDiscount)
		},
		gen.Int64Range(1, 10_000_000),
		gen.Int64Range(1, 100),
		gen.Int64Range(1, 200_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestVoucher_DiscountFor(t *testing.T) {
	v := activeVoucher(DiscountPercentage, 10)
	assert.True(t, v.DiscountFor(decimal.NewFromInt(250_000)).Equal(decimal.NewFromInt(25_000)))

	v.MaxDiscount = decimal.NewFromInt(20_000)
	assert.True(t, v.DiscountFor(decimal.NewFromInt(250_000)).Equal(decimal.NewFromInt(20_000)))

	fixed := activeVoucher(DiscountFixed, 50_000)
	assert.True(t, fixed.DiscountFor(decimal.NewFromInt(30_000)).Equal(decimal.NewFromInt(30_000)))
	assert.True(t, fixed.DiscountFor(decimal.NewFromInt(80_000)).Equal(decimal.NewFromInt(50_000)))
}

func TestVoucher_CheckEligible(t *testing.T) {
	now := time.Now()
	subtotal := decimal.NewFromInt(100_000)

	tests := []struct {
		name    string
		mutate  func(v *Voucher)
		wantErr error
	}{
		{"eligible", func(v *Voucher) {}, nil},
		{"inactive", func(v *Voucher) { v.IsActive = false }, ErrVoucherInactive},
		{"not started", func(v *Voucher) { v.StartDate = now.Add(time.Hour); v.EndDate = now.Add(2 * time.Hour) }, ErrVoucherNotStarted},
		{"expired", func(v *Voucher) { v.EndDate = now.Add(-time.Minute) }, ErrVoucherExpired},
		{"exhausted", func(v *Voucher) { v.UsageLimit = 3; v.UsedCount = 3 }, ErrVoucherExhausted},
		{"unlimited usage", func(v *Voucher) { v.UsageLimit = 0; v.UsedCount = 1000 }, nil},
		{"below minimum", func(v *Voucher) { v.MinOrderValue = decimal.NewFromInt(200_000) }, ErrVoucherMinOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := activeVoucher(DiscountFixed, 10_000)
			tt.mutate(v)
			assert.ErrorIs(t, v.CheckEligible(subtotal, now), tt.wantErr)
		})
	}
}

func TestVoucher_Validate(t *testing.T) {
	v := activeVoucher(DiscountPercentage, 150)
	assert.Error(t, v.Validate())

	v = activeVoucher(DiscountFixed, 0)
	assert.Error(t, v.Validate())

	v = activeVoucher(DiscountType("bogus"), 10)
	assert.ErrorIs(t, v.Validate(), ErrInvalidDiscountType)

	v = activeVoucher(DiscountFixed, 10)
	v.EndDate = v.StartDate
	assert.Error(t, v.Validate())

	assert.NoError(t, activeVoucher(DiscountPercentage, 100).Validate())
}

func TestNormalizeVoucherCode(t *testing.T) {
	assert.Equal(t, "SUMMER10", NormalizeVoucherCode("  summer10 "))
}
