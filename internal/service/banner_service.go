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
	"go.uber.org/zap"
)

// BannerInput holds the editable fields of a banner
type BannerInput struct {
	Title    string
	LinkURL  string
	Position int
	IsActive bool
}

// BannerService defines the interface for banner business logic
type BannerService interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error)
	Create(ctx context.Context, input BannerInput, image io.Reader) (*domain.Banner, error)
	Update(ctx context.Context, id uuid.UUID, input BannerInput) (*domain.Banner, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bannerService struct {
	bannerRepo repository.BannerRepository
	images     storage.ImageStore
	logger     *zap.Logger
}

// NewBannerService creates a new instance of BannerService
func NewBannerService(bannerRepo repository.BannerRepository, images storage.ImageStore, logger *zap.Logger) BannerService {
	return &bannerService{bannerRepo: bannerRepo, images: images, logger: logger}
}

func (s *bannerService) List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error) {
	return s.bannerRepo.List(ctx, activeOnly)
}

func (s *bannerService) Create(ctx context.Context, input BannerInput, image io.Reader) (*domain.Banner, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if image == nil {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}

	url, err := s.images.Save(ctx, storage.FolderBanners, image)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	banner := &domain.Banner{
		ID:        uuid.New(),
		Title:     title,
		ImageURL:  url,
		LinkURL:   strings.TrimSpace(input.LinkURL),
		Position:  input.Position,
		IsActive:  input.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.bannerRepo.Create(ctx, banner); err != nil {
		_ = s.images.Delete(ctx, url)
		return nil, err
	}
	return banner, nil
}

func (s *bannerService) Update(ctx context.Context, id uuid.UUID, input BannerInput) (*domain.Banner, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	banner.Title = title
	banner.LinkURL = strings.TrimSpace(input.LinkURL)
	banner.Position = input.Position
	banner.IsActive = input.IsActive
	banner.UpdatedAt = time.Now()

	if err := s.bannerRepo.Update(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *bannerService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.bannerRepo.SetActive(ctx, id, active)
}

// Delete removes the banner and its image
func (s *bannerService) Delete(ctx context.Context, id uuid.UUID) error {
	banner, err := s.bannerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.bannerRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.images.Delete(ctx, banner.ImageURL); err != nil {
		s.logger.Warn("Failed to delete banner image", zap.String("url", banner.ImageURL), zap.Error(err))
	}
	return nil
}
