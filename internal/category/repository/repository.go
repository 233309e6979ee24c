package repository

import (
	"context"

	"ecommerce-platform/backend/internal/category/domain"
)

// Repository defines persistence for categories. Get* methods return (nil, nil)
// when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	// ListRoot returns active root categories ordered by sort order.
	ListRoot(ctx context.Context) ([]*domain.Category, error)
	// ListChildren returns active children of the given category.
	ListChildren(ctx context.Context, parentID string) ([]*domain.Category, error)
	// ListAll returns every category, active or not.
	ListAll(ctx context.Context) ([]*domain.Category, error)
	// HasChildren reports whether any category references id as parent.
	HasChildren(ctx context.Context, id string) (bool, error)
	// HasProducts reports whether any product belongs to the category.
	HasProducts(ctx context.Context, id string) (bool, error)
}
