// Package service implements review moderation: creation with a verified
// purchase check, approval driving the product rating rollup, and helpfulness
// votes.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecommerce-platform/backend/internal/apperr"
	productdomain "ecommerce-platform/backend/internal/product/domain"
	"ecommerce-platform/backend/internal/review/domain"
	"ecommerce-platform/backend/internal/review/repository"
)

// Catalog is the product slice the review flow needs.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*productdomain.Product, error)
	SetRating(ctx context.Context, id string, averageHundredths, count int) error
}

// Purchases answers whether a user has received a product.
type Purchases interface {
	HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error)
}

// Service provides review operations.
type Service struct {
	reviews   repository.Repository
	catalog   Catalog
	purchases Purchases
	now       func() time.Time
}

// NewService builds a review service.
func NewService(reviews repository.Repository, catalog Catalog, purchases Purchases) *Service {
	return &Service{
		reviews:   reviews,
		catalog:   catalog,
		purchases: purchases,
		now:       time.Now,
	}
}

// CreateInput carries the fields of a new review.
type CreateInput struct {
	ProductID string
	Rating    int
	Title     string
	Comment   string
}

// Create records an unapproved review. One review per user per product; the
// verified flag is set when the user has a delivered order with the product.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.InvalidArgument("rating must be between 1 and 5")
	}
	p, err := s.catalog.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, apperr.Internal("loading product", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found: %s", in.ProductID)
	}

	exists, err := s.reviews.ExistsByProductAndUser(ctx, in.ProductID, userID)
	if err != nil {
		return nil, apperr.Internal("checking existing review", err)
	}
	if exists {
		return nil, apperr.Conflict("product already reviewed")
	}

	verified, err := s.purchases.HasDeliveredProduct(ctx, userID, in.ProductID)
	if err != nil {
		return nil, apperr.Internal("checking purchase history", err)
	}

	now := s.now().UTC()
	rev := &domain.Review{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		UserID:    userID,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		Verified:  verified,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, rev); err != nil {
		return nil, apperr.Internal("creating review", err)
	}
	return rev, nil
}

// Get returns the review for id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Review, error) {
	rev, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading review", err)
	}
	if rev == nil {
		return nil, apperr.NotFound("review not found: %s", id)
	}
	return rev, nil
}

// ListResult is a review page with the total match count.
type ListResult struct {
	Reviews []*domain.Review
	Total   int
}

// ListByProduct returns approved reviews of the product.
func (s *Service) ListByProduct(ctx context.Context, productID string, limit, offset int) (*ListResult, error) {
	return s.list(ctx, repository.ListFilter{
		ProductID:    productID,
		ApprovedOnly: true,
		Limit:        limit,
		Offset:       offset,
	})
}

// ListPending returns reviews awaiting moderation.
func (s *Service) ListPending(ctx context.Context, limit, offset int) (*ListResult, error) {
	return s.list(ctx, repository.ListFilter{
		PendingOnly: true,
		Limit:       limit,
		Offset:      offset,
	})
}

func (s *Service) list(ctx context.Context, f repository.ListFilter) (*ListResult, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	reviews, err := s.reviews.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("listing reviews", err)
	}
	total, err := s.reviews.Count(ctx, f)
	if err != nil {
		return nil, apperr.Internal("counting reviews", err)
	}
	return &ListResult{Reviews: reviews, Total: total}, nil
}

// Approve marks the review approved and refreshes the product rating rollup.
func (s *Service) Approve(ctx context.Context, id string) (*domain.Review, error) {
	rev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.Approved {
		return rev, nil
	}
	rev.Approved = true
	rev.UpdatedAt = s.now().UTC()
	if err := s.reviews.Update(ctx, rev); err != nil {
		return nil, apperr.Internal("updating review", err)
	}
	if err := s.refreshRating(ctx, rev.ProductID); err != nil {
		return nil, err
	}
	return rev, nil
}

// Delete removes the review. Non-staff callers may only delete their own; an
// approved review's removal refreshes the product rating rollup.
func (s *Service) Delete(ctx context.Context, id, requesterID string, staff bool) error {
	rev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !staff && rev.UserID != requesterID {
		return apperr.Forbidden("review belongs to another user")
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return apperr.Internal("deleting review", err)
	}
	if rev.Approved {
		return s.refreshRating(ctx, rev.ProductID)
	}
	return nil
}

func (s *Service) refreshRating(ctx context.Context, productID string) error {
	stats, err := s.reviews.ApprovedStats(ctx, productID)
	if err != nil {
		return apperr.Internal("computing rating rollup", err)
	}
	if err := s.catalog.SetRating(ctx, productID, stats.AverageHundredths, stats.Count); err != nil {
		return apperr.Internal("storing rating rollup", err)
	}
	return nil
}

// MarkHelpful records a helpful vote on an approved review.
func (s *Service) MarkHelpful(ctx context.Context, id string) error {
	return s.vote(ctx, id, s.reviews.IncrementHelpful)
}

// MarkUnhelpful records an unhelpful vote on an approved review.
func (s *Service) MarkUnhelpful(ctx context.Context, id string) error {
	return s.vote(ctx, id, s.reviews.IncrementUnhelpful)
}

func (s *Service) vote(ctx context.Context, id string, bump func(context.Context, string) error) error {
	rev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !rev.Approved {
		return apperr.InvalidArgument("review is not approved")
	}
	if err := bump(ctx, id); err != nil {
		return apperr.Internal("recording vote", err)
	}
	return nil
}
