package repository

import (
	"database/sql"
	"testing"

	"shoe-store/internal/domain"
)

// Hooks for the external checkout tests, which import the service layer.

func SharedTestDB() *sql.DB { return testDB }

func NewTestUser(t *testing.T) *domain.User { return newTestUser(t, domain.RoleCustomer) }

func NewTestVariant(t *testing.T, price int64, stock int) *domain.ProductVariant {
	category := newTestCategory(t)
	product := newTestProduct(t, category.ID, "Acme")
	return newTestVariant(t, product.ID, "42", price, stock)
}

func NewTestVoucher(t *testing.T, limit int) *domain.Voucher { return newTestVoucher(t, limit) }
