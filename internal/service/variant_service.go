package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"
	"shoe-store/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VariantInput holds the editable fields of a variant. A zero CurrentPrice means no markdown.
type VariantInput struct {
	Color         string
	Size          string
	OriginalPrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	Stock         int
	Status        domain.VariantStatus
}

// VariantService defines the interface for variant business logic
type VariantService interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error)
	Create(ctx context.Context, productID uuid.UUID, input VariantInput) (*domain.ProductVariant, error)
	Update(ctx context.Context, id uuid.UUID, input VariantInput) (*domain.ProductVariant, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, stock int) (*domain.ProductVariant, error)
	UploadImage(ctx context.Context, id uuid.UUID, image io.Reader) (*domain.ProductVariant, error)
}

type variantService struct {
	variantRepo repository.VariantRepository
	productRepo repository.ProductRepository
	images      storage.ImageStore
	logger      *zap.Logger
}

// NewVariantService creates a new instance of VariantService
func NewVariantService(
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	images storage.ImageStore,
	logger *zap.Logger,
) VariantService {
	return &variantService{
		variantRepo: variantRepo,
		productRepo: productRepo,
		images:      images,
		logger:      logger,
	}
}

func applyVariantInput(variant *domain.ProductVariant, input VariantInput) error {
	color := strings.TrimSpace(input.Color)
	size := strings.TrimSpace(input.Size)
	if color == "" || size == "" {
		return fmt.Errorf("%w: color and size are required", ErrInvalidInput)
	}
	if !input.OriginalPrice.IsPositive() {
		return fmt.Errorf("%w: original_price must be positive", ErrInvalidInput)
	}

	current := input.CurrentPrice
	if current.IsZero() {
		current = input.OriginalPrice
	}
	if current.IsNegative() || current.GreaterThan(input.OriginalPrice) {
		return fmt.Errorf("%w: current_price must be between 0 and original_price", ErrInvalidInput)
	}
	if input.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	if input.Status != "" && !input.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}

	variant.Color = color
	variant.Size = size
	variant.OriginalPrice = input.OriginalPrice.Round(2)
	variant.CurrentPrice = current.Round(2)
	variant.Stock = input.Stock
	// discontinued stays until a status is given explicitly
	if input.Status != "" {
		variant.Status = input.Status
	}
	variant.NormalizeStatus()
	return nil
}

func newVariant(productID uuid.UUID, input VariantInput, now time.Time) (*domain.ProductVariant, error) {
	variant := &domain.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyVariantInput(variant, input); err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *variantService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.variantRepo.ListByProduct(ctx, productID)
}

func (s *variantService) Get(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	return s.variantRepo.FindByID(ctx, id)
}

func (s *variantService) Create(ctx context.Context, productID uuid.UUID, input VariantInput) (*domain.ProductVariant, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	variant, err := newVariant(productID, input, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.variantRepo.Create(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *variantService) Update(ctx context.Context, id uuid.UUID, input VariantInput) (*domain.ProductVariant, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyVariantInput(variant, input); err != nil {
		return nil, err
	}
	variant.UpdatedAt = time.Now()

	if err := s.variantRepo.Update(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *variantService) Delete(ctx context.Context, id uuid.UUID) error {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.variantRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.dropImage(ctx, variant.ImageURL)
	return nil
}

// SetStock sets absolute stock; the status follows
func (s *variantService) SetStock(ctx context.Context, id uuid.UUID, stock int) (*domain.ProductVariant, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return s.variantRepo.SetStock(ctx, id, stock)
}

// UploadImage replaces the variant image and deletes the previous one
func (s *variantService) UploadImage(ctx context.Context, id uuid.UUID, image io.Reader) (*domain.ProductVariant, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, storage.FolderVariants, image)
	if err != nil {
		return nil, err
	}

	if err := s.variantRepo.SetImage(ctx, id, url); err != nil {
		s.dropImage(ctx, url)
		return nil, err
	}

	if variant.ImageURL != url {
		s.dropImage(ctx, variant.ImageURL)
	}
	variant.ImageURL = url
	return variant, nil
}

func (s *variantService) dropImage(ctx context.Context, url string) {
	releaseImage(ctx, s.images, s.variantRepo, s.logger, url)
}

// releaseImage deletes a variant image unless an order still shows it
func releaseImage(ctx context.Context, images storage.ImageStore, variants repository.VariantRepository, logger *zap.Logger, url string) {
	if url == "" {
		return
	}
	inUse, err := variants.ImageReferencedByOrders(ctx, url)
	if err != nil {
		logger.Warn("Keeping variant image, reference check failed", zap.String("url", url), zap.Error(err))
		return
	}
	if inUse {
		logger.Debug("Keeping variant image shown by orders", zap.String("url", url))
		return
	}
	if err := images.Delete(ctx, url); err != nil {
		logger.Warn("Failed to delete variant image", zap.String("url", url), zap.Error(err))
	}
}
