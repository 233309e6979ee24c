package repository

import (
	"context"

	"ecommerce-platform/backend/internal/review/domain"
)

// ListFilter narrows review listings. Zero values mean "no constraint".
type ListFilter struct {
	ProductID string
	UserID    string
	// ApprovedOnly restricts to approved reviews; public listings set it.
	ApprovedOnly bool
	// PendingOnly restricts to reviews awaiting moderation.
	PendingOnly bool

	Limit  int
	Offset int
}

// Stats is the approved-review rollup for a product.
type Stats struct {
	// AverageHundredths is the mean rating in hundredths (e.g. 450 for 4.5).
	AverageHundredths int
	Count             int
}

// Repository defines persistence for reviews. Get* methods return (nil, nil)
// when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	// ExistsByProductAndUser reports whether the user already reviewed the
	// product.
	ExistsByProductAndUser(ctx context.Context, productID, userID string) (bool, error)
	Create(ctx context.Context, r *domain.Review) error
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]*domain.Review, error)
	Count(ctx context.Context, f ListFilter) (int, error)

	// ApprovedStats returns the rating rollup over approved reviews of the
	// product. Zero values when none exist.
	ApprovedStats(ctx context.Context, productID string) (Stats, error)

	IncrementHelpful(ctx context.Context, id string) error
	IncrementUnhelpful(ctx context.Context, id string) error
}
