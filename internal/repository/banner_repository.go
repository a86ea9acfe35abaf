package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

var ErrBannerNotFound = errors.New("banner not found")

// BannerRepository defines the interface for banner data access
type BannerRepository interface {
	Create(ctx context.Context, banner *domain.Banner) error
	Update(ctx context.Context, banner *domain.Banner) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error)
}

type bannerRepository struct {
	db DBTX
}

// NewBannerRepository creates a new instance of BannerRepository
func NewBannerRepository(db DBTX) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) Create(ctx context.Context, banner *domain.Banner) error {
	query := `
		INSERT INTO banners (id, title, image_url, link_url, position, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		banner.ID,
		banner.Title,
		banner.ImageURL,
		banner.LinkURL,
		banner.Position,
		banner.IsActive,
		banner.CreatedAt,
		banner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create banner: %w", err)
	}

	return nil
}

func (r *bannerRepository) Update(ctx context.Context, banner *domain.Banner) error {
	query := `
		UPDATE banners
		SET title = $2, image_url = $3, link_url = $4, position = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		banner.ID,
		banner.Title,
		banner.ImageURL,
		banner.LinkURL,
		banner.Position,
		banner.IsActive,
		banner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update banner: %w", err)
	}

	return expectAffected(result, ErrBannerNotFound)
}

func (r *bannerRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE banners SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set banner active flag: %w", err)
	}

	return expectAffected(result, ErrBannerNotFound)
}

func (r *bannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}

	return expectAffected(result, ErrBannerNotFound)
}

func (r *bannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	query := `
		SELECT id, title, image_url, link_url, position, is_active, created_at, updated_at
		FROM banners
		WHERE id = $1
	`

	banner := &domain.Banner{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&banner.ID,
		&banner.Title,
		&banner.ImageURL,
		&banner.LinkURL,
		&banner.Position,
		&banner.IsActive,
		&banner.CreatedAt,
		&banner.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("failed to find banner by ID: %w", err)
	}

	return banner, nil
}

// List returns banners ordered by position; activeOnly hides disabled ones
func (r *bannerRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error) {
	query := `
		SELECT id, title, image_url, link_url, position, is_active, created_at, updated_at
		FROM banners
		WHERE ($1 = FALSE OR is_active = TRUE)
		ORDER BY position ASC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := []*domain.Banner{}
	for rows.Next() {
		banner := &domain.Banner{}
		err := rows.Scan(
			&banner.ID,
			&banner.Title,
			&banner.ImageURL,
			&banner.LinkURL,
			&banner.Position,
			&banner.IsActive,
			&banner.CreatedAt,
			&banner.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, banner)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banners: %w", err)
	}

	return banners, nil
}
