package service

import (
	"context"
	"fmt"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"
)

const (
	DefaultReportDays      = 30
	DefaultTopProducts     = 10
	MaxTopProducts         = 100
	DefaultLowStockTrigger = 5
)

// DateRange is a half-open [From, To) reporting window
type DateRange struct {
	From time.Time
	To   time.Time
}

// AnalyticsService defines the interface for admin reporting
type AnalyticsService interface {
	Summary(ctx context.Context, r DateRange) (*domain.SalesSummary, error)
	Revenue(ctx context.Context, r DateRange) ([]*domain.DailyRevenue, error)
	TopProducts(ctx context.Context, r DateRange, limit int) ([]*domain.ProductSales, error)
	LowStock(ctx context.Context, threshold int) ([]*domain.LowStockVariant, error)
}

type analyticsService struct {
	analyticsRepo     repository.AnalyticsRepository
	lowStockThreshold int
	now               func() time.Time
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, lowStockThreshold int) AnalyticsService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockTrigger
	}
	return &analyticsService{
		analyticsRepo:     analyticsRepo,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// resolve fills a missing end with now and a missing start with 30 days before the end
func (s *analyticsService) resolve(r DateRange) (DateRange, error) {
	if r.To.IsZero() {
		r.To = s.now()
	}
	if r.From.IsZero() {
		r.From = r.To.AddDate(0, 0, -DefaultReportDays)
	}
	if !r.From.Before(r.To) {
		return r, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	return r, nil
}

func (s *analyticsService) Summary(ctx context.Context, r DateRange) (*domain.SalesSummary, error) {
	r, err := s.resolve(r)
	if err != nil {
		return nil, err
	}
	return s.analyticsRepo.Summary(ctx, r.From, r.To)
}

func (s *analyticsService) Revenue(ctx context.Context, r DateRange) ([]*domain.DailyRevenue, error) {
	r, err := s.resolve(r)
	if err != nil {
		return nil, err
	}
	return s.analyticsRepo.RevenueByDay(ctx, r.From, r.To)
}

func (s *analyticsService) TopProducts(ctx context.Context, r DateRange, limit int) ([]*domain.ProductSales, error) {
	r, err := s.resolve(r)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	if limit > MaxTopProducts {
		limit = MaxTopProducts
	}
	return s.analyticsRepo.TopProducts(ctx, r.From, r.To, limit)
}

func (s *analyticsService) LowStock(ctx context.Context, threshold int) ([]*domain.LowStockVariant, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	return s.analyticsRepo.LowStock(ctx, threshold)
}
