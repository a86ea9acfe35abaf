package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherInput holds the editable fields of a voucher
type VoucherInput struct {
	Code          string
	Description   string
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue decimal.Decimal
	MaxDiscount   decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
	UsageLimit    int
	IsActive      bool
}

// VoucherQuote is the outcome of applying a voucher to a subtotal
type VoucherQuote struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// VoucherService defines the interface for voucher business logic
type VoucherService interface {
	List(ctx context.Context) ([]*domain.Voucher, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Voucher, error)
	Create(ctx context.Context, input VoucherInput) (*domain.Voucher, error)
	Update(ctx context.Context, id uuid.UUID, input VoucherInput) (*domain.Voucher, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*VoucherQuote, error)
}

type voucherService struct {
	voucherRepo repository.VoucherRepository
	now         func() time.Time
}

// NewVoucherService creates a new instance of VoucherService
func NewVoucherService(voucherRepo repository.VoucherRepository) VoucherService {
	return &voucherService{voucherRepo: voucherRepo, now: time.Now}
}

func applyVoucherInput(v *domain.Voucher, input VoucherInput) error {
	v.Code = domain.NormalizeVoucherCode(input.Code)
	if v.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	v.Description = strings.TrimSpace(input.Description)
	v.DiscountType = input.DiscountType
	v.DiscountValue = input.DiscountValue
	v.MinOrderValue = input.MinOrderValue
	v.MaxDiscount = input.MaxDiscount
	v.StartDate = input.StartDate
	v.EndDate = input.EndDate
	v.UsageLimit = input.UsageLimit
	v.IsActive = input.IsActive

	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return nil
}

func (s *voucherService) List(ctx context.Context) ([]*domain.Voucher, error) {
	return s.voucherRepo.List(ctx, false)
}

func (s *voucherService) Get(ctx context.Context, id uuid.UUID) (*domain.Voucher, error) {
	return s.voucherRepo.FindByID(ctx, id)
}

func (s *voucherService) Create(ctx context.Context, input VoucherInput) (*domain.Voucher, error) {
	now := s.now()
	voucher := &domain.Voucher{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	if err := applyVoucherInput(voucher, input); err != nil {
		return nil, err
	}

	if err := s.voucherRepo.Create(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *voucherService) Update(ctx context.Context, id uuid.UUID, input VoucherInput) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyVoucherInput(voucher, input); err != nil {
		return nil, err
	}
	voucher.UpdatedAt = s.now()

	if err := s.voucherRepo.Update(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *voucherService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.voucherRepo.Delete(ctx, id)
}

// Apply quotes the discount without consuming a use
func (s *voucherService) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*VoucherQuote, error) {
	if subtotal.IsNegative() {
		return nil, fmt.Errorf("%w: subtotal must not be negative", ErrInvalidInput)
	}

	voucher, err := s.voucherRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := voucher.CheckEligible(subtotal, s.now()); err != nil {
		return nil, err
	}

	discount := voucher.DiscountFor(subtotal)
	return &VoucherQuote{
		Code:     voucher.Code,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}
