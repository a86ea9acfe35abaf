package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"
	"shoe-store/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductInput holds the editable fields of a product
type ProductInput struct {
	Name        string
	Brand       string
	Description string
	CategoryID  uuid.UUID
	IsActive    bool
	Variants    []VariantInput
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductSummary, int, error)
	Brands(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error)
	Create(ctx context.Context, input ProductInput) (*domain.ProductDetail, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	categoryRepo repository.CategoryRepository
	reviewRepo   repository.ReviewRepository
	txManager    repository.TxManager
	images       storage.ImageStore
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	categoryRepo repository.CategoryRepository,
	reviewRepo repository.ReviewRepository,
	txManager repository.TxManager,
	images storage.ImageStore,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
		txManager:    txManager,
		images:       images,
		logger:       logger,
	}
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductSummary, int, error) {
	return s.productRepo.List(ctx, filter)
}

func (s *productService) Brands(ctx context.Context) ([]string, error) {
	return s.productRepo.Brands(ctx)
}

// Get returns a product with variants and rating. Inactive products are hidden unless includeInactive.
func (s *productService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, repository.ErrProductNotFound
	}

	detail := &domain.ProductDetail{Product: *product}

	category, err := s.categoryRepo.FindByID(ctx, product.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	detail.CategoryName = category.Name

	detail.Variants, err = s.variantRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	summary, err := s.reviewRepo.Summary(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	detail.AverageRating = summary.Average
	detail.ReviewCount = summary.Count

	return detail, nil
}

func validateProductInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Brand = strings.TrimSpace(input.Brand)
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Brand == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidInput)
	}
	if input.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: category_id is required", ErrInvalidInput)
	}
	return nil
}

// Create stores the product and its inline variants in one transaction
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.ProductDetail, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Brand:       input.Brand,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  input.CategoryID,
		IsActive:    input.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	variants := make([]*domain.ProductVariant, 0, len(input.Variants))
	for i := range input.Variants {
		variant, err := newVariant(product.ID, input.Variants[i], now)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}

	err := s.txManager.WithinTx(ctx, func(r repository.TxRepositories) error {
		if err := r.Products().Create(ctx, product); err != nil {
			return err
		}
		for _, variant := range variants {
			if err := r.Variants().Create(ctx, variant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("variants", len(variants)),
	)

	return &domain.ProductDetail{Product: *product, Variants: variants}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Brand = input.Brand
	product.Description = strings.TrimSpace(input.Description)
	product.CategoryID = input.CategoryID
	product.IsActive = input.IsActive
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.productRepo.SetActive(ctx, id, active)
}

// Delete removes the product, its variants and the images no order still shows
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	variants, err := s.variantRepo.ListByProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, variant := range variants {
		releaseImage(ctx, s.images, s.variantRepo, s.logger, variant.ImageURL)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()), zap.Int("variants", len(variants)))
	return nil
}
