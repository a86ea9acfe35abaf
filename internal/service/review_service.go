package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"

	"github.com/google/uuid"
)

// ReviewInput is a new review of one item of a delivered order
type ReviewInput struct {
	OrderID   uuid.UUID
	VariantID uuid.UUID
	Rating    int
	Comment   string
}

// ReviewService defines the interface for review business logic
type ReviewService interface {
	Create(ctx context.Context, userID uuid.UUID, input ReviewInput) (*domain.Review, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (*domain.Review, error)
	Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page repository.Page) ([]*domain.Review, int, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error)
	ListByOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) ([]*domain.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, orderRepo: orderRepo}
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

func (s *reviewService) Create(ctx context.Context, userID uuid.UUID, input ReviewInput) (*domain.Review, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	if order.Status != domain.OrderDelivered {
		return nil, ErrReviewNotAllowed
	}

	var item *domain.OrderItem
	for _, it := range order.Items {
		if it.VariantID != nil && *it.VariantID == input.VariantID {
			item = it
			break
		}
	}
	if item == nil {
		return nil, ErrReviewNotAllowed
	}

	now := time.Now()
	review := &domain.Review{
		ID:        uuid.New(),
		OrderID:   order.ID,
		UserID:    userID,
		ProductID: item.ProductID,
		VariantID: input.VariantID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Update lets the author change rating and comment
func (s *reviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrForbidden
	}

	review.Rating = rating
	review.Comment = strings.TrimSpace(comment)
	review.UpdatedAt = time.Now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete is allowed for the author and for admins
func (s *reviewService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, reviewID uuid.UUID) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != userID {
		return ErrForbidden
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID, page repository.Page) ([]*domain.Review, int, error) {
	return s.reviewRepo.ListByProduct(ctx, productID, page)
}

func (s *reviewService) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	return s.reviewRepo.ListByUser(ctx, userID)
}

func (s *reviewService) ListByOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) ([]*domain.Review, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return s.reviewRepo.ListByOrder(ctx, orderID)
}
