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
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("this item of the order has already been reviewed")
)

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page Page) ([]*domain.Review, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Review, error)
	Summary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error)
}

type reviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db DBTX) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.order_id, r.user_id, r.product_id, r.variant_id, r.rating, r.comment,
	       COALESCE(u.full_name, ''), r.created_at, r.updated_at
	FROM reviews r
	LEFT JOIN users u ON u.id = r.user_id
`

func scanReview(row interface{ Scan(...interface{}) error }) (*domain.Review, error) {
	review := &domain.Review{}
	err := row.Scan(
		&review.ID,
		&review.OrderID,
		&review.UserID,
		&review.ProductID,
		&review.VariantID,
		&review.Rating,
		&review.Comment,
		&review.ReviewerName,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	return review, err
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, order_id, user_id, product_id, variant_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.OrderID,
		review.UserID,
		review.ProductID,
		review.VariantID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "reviews_order_user_variant_key") {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, review.ID, review.Rating, review.Comment, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	return expectAffected(result, ErrReviewNotFound)
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return expectAffected(result, ErrReviewNotFound)
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

// ListByProduct returns a page of reviews for a product, newest first
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page Page) ([]*domain.Review, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	reviews, err := r.list(ctx, reviewSelect+` WHERE r.product_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`,
		productID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (r *reviewRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.order_id = $1 ORDER BY r.created_at ASC`, orderID)
}

func (r *reviewRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// Summary returns the average rating (two decimals) and review count of a product
func (r *reviewRepository) Summary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error) {
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8, COUNT(*) FROM reviews WHERE product_id = $1`

	var summary domain.RatingSummary
	if err := r.db.QueryRowContext(ctx, query, productID).Scan(&summary.Average, &summary.Count); err != nil {
		return summary, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return summary, nil
}
