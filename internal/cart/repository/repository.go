package repository

import (
	"context"
	"database/sql"

	"ecommerce-platform/backend/internal/cart/domain"
)

// Repository defines persistence for shopping carts. GetByUserID returns
// (nil, nil) when the user has no cart yet.
type Repository interface {
	// GetByUserID loads the cart with its items and their current products.
	GetByUserID(ctx context.Context, userID string) (*domain.Cart, error)
	Create(ctx context.Context, c *domain.Cart) error
	// AddItem inserts a line; the (cart, product) pair is unique.
	AddItem(ctx context.Context, item *domain.Item) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	// Clear removes every line from the cart.
	Clear(ctx context.Context, cartID string) error
	Touch(ctx context.Context, cartID string) error

	// WithTx returns a repository bound to tx for use inside a unit of work.
	WithTx(tx *sql.Tx) Repository
}
