package repository

import (
	"context"

	"ecommerce-platform/backend/internal/address/domain"
)

// Repository defines persistence for addresses. GetByID returns (nil, nil)
// when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Address, error)
	Create(ctx context.Context, a *domain.Address) error
	Update(ctx context.Context, a *domain.Address) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's active addresses, default first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Address, error)
	// ClearDefault unsets the default flag on the user's addresses whose type
	// overlaps t. A BOTH address overlaps every type.
	ClearDefault(ctx context.Context, userID string, t domain.AddressType) error
}
