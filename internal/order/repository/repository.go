package repository

import (
	"context"
	"database/sql"

	"ecommerce-platform/backend/internal/order/domain"
)

// ListFilter narrows order listings. Zero values mean "no constraint".
type ListFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

// Repository defines persistence for orders. Get* methods return (nil, nil)
// when no row matches.
type Repository interface {
	// Create persists the order with its items and initial history entry.
	Create(ctx context.Context, o *domain.Order) error
	// GetByID loads the order with items and history.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	// Update rewrites the order's mutable columns (status, payment, dates,
	// tracking, notes). Items are immutable after creation.
	Update(ctx context.Context, o *domain.Order) error
	// AddHistory appends a status history entry.
	AddHistory(ctx context.Context, h *domain.StatusChange) error
	List(ctx context.Context, f ListFilter) ([]*domain.Order, error)
	Count(ctx context.Context, f ListFilter) (int, error)

	// HasDeliveredProduct reports whether the user has a delivered order
	// containing the product. Backs the verified-purchase flag on reviews.
	HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error)

	// WithTx returns a repository bound to tx for use inside a unit of work.
	WithTx(tx *sql.Tx) Repository
}
