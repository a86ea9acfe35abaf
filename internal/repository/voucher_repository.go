package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrVoucherNotFound   = errors.New("voucher not found")
	ErrVoucherCodeExists = errors.New("voucher with this code already exists")
)

// VoucherRepository defines the interface for voucher data access
type VoucherRepository interface {
	Create(ctx context.Context, voucher *domain.Voucher) error
	Update(ctx context.Context, voucher *domain.Voucher) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Voucher, error)
	FindByCode(ctx context.Context, code string) (*domain.Voucher, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Voucher, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
	DecrementUsage(ctx context.Context, id uuid.UUID) error
}

type voucherRepository struct {
	db DBTX
}

// NewVoucherRepository creates a new instance of VoucherRepository
func NewVoucherRepository(db DBTX) VoucherRepository {
	return &voucherRepository{db: db}
}

const voucherColumns = `id, code, description, discount_type, discount_value, min_order_value, max_discount,
	start_date, end_date, usage_limit, used_count, is_active, created_at, updated_at`

func scanVoucher(row interface{ Scan(...interface{}) error }) (*domain.Voucher, error) {
	v := &domain.Voucher{}
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.Description,
		&v.DiscountType,
		&v.DiscountValue,
		&v.MinOrderValue,
		&v.MaxDiscount,
		&v.StartDate,
		&v.EndDate,
		&v.UsageLimit,
		&v.UsedCount,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

func (r *voucherRepository) Create(ctx context.Context, voucher *domain.Voucher) error {
	query := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		voucher.ID,
		voucher.Code,
		voucher.Description,
		voucher.DiscountType,
		voucher.DiscountValue,
		voucher.MinOrderValue,
		voucher.MaxDiscount,
		voucher.StartDate,
		voucher.EndDate,
		voucher.UsageLimit,
		voucher.UsedCount,
		voucher.IsActive,
		voucher.CreatedAt,
		voucher.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "vouchers_code_key") {
			return ErrVoucherCodeExists
		}
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	return nil
}

// Update rewrites the definition; used_count is owned by checkout and left untouched
func (r *voucherRepository) Update(ctx context.Context, voucher *domain.Voucher) error {
	query := `
		UPDATE vouchers
		SET code = $2, description = $3, discount_type = $4, discount_value = $5, min_order_value = $6,
		    max_discount = $7, start_date = $8, end_date = $9, usage_limit = $10, is_active = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		voucher.ID,
		voucher.Code,
		voucher.Description,
		voucher.DiscountType,
		voucher.DiscountValue,
		voucher.MinOrderValue,
		voucher.MaxDiscount,
		voucher.StartDate,
		voucher.EndDate,
		voucher.UsageLimit,
		voucher.IsActive,
		voucher.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "vouchers_code_key") {
			return ErrVoucherCodeExists
		}
		return fmt.Errorf("failed to update voucher: %w", err)
	}

	return expectAffected(result, ErrVoucherNotFound)
}

func (r *voucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete voucher: %w", err)
	}

	return expectAffected(result, ErrVoucherNotFound)
}

func (r *voucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Voucher, error) {
	return r.findOne(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id)
}

// FindByCode matches the code case-insensitively
func (r *voucherRepository) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	return r.findOne(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = $1`, domain.NormalizeVoucherCode(code))
}

// FindByCodeForUpdate locks the voucher row until the surrounding transaction ends
func (r *voucherRepository) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error) {
	return r.findOne(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = $1 FOR UPDATE`, domain.NormalizeVoucherCode(code))
}

func (r *voucherRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Voucher, error) {
	voucher, err := scanVoucher(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("failed to find voucher: %w", err)
	}
	return voucher, nil
}

func (r *voucherRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE ($1 = FALSE OR is_active = TRUE) ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := []*domain.Voucher{}
	for rows.Next() {
		voucher, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, voucher)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vouchers: %w", err)
	}

	return vouchers, nil
}

// IncrementUsage consumes one use. It reports false when the limit is already reached.
func (r *voucherRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE vouchers
		SET used_count = used_count + 1
		WHERE id = $1 AND (usage_limit = 0 OR used_count < usage_limit)
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to increment voucher usage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// DecrementUsage gives a use back, e.g. when an order is cancelled.
// A voucher deleted in the meantime is not an error.
func (r *voucherRepository) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE vouchers SET used_count = used_count - 1 WHERE id = $1 AND used_count > 0`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to decrement voucher usage: %w", err)
	}
	return nil
}
