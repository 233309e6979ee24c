package repository

import (
	"context"
	"database/sql"

	"ecommerce-platform/backend/internal/product/domain"
)

// ListFilter narrows product listings. Zero values mean "no constraint".
type ListFilter struct {
	CategoryID    string
	Search        string
	Brand         string
	MinPriceCents int64
	MaxPriceCents int64
	FeaturedOnly  bool
	// ActiveOnly restricts to purchasable catalog entries (active flag and
	// ACTIVE status). Admin listings leave it false.
	ActiveOnly bool

	// Sort selects the listing order; see the Sort* constants. Empty means
	// SortNewest.
	Sort string

	Limit  int
	Offset int
}

// Listing sort orders.
const (
	SortNewest      = "newest"
	SortBestSelling = "best_selling"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortRating      = "rating"
)

// Repository defines persistence for products. Get* methods return (nil, nil)
// when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]*domain.Product, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	// ListLowStock returns active products whose stock is at or below their
	// minimum stock level.
	ListLowStock(ctx context.Context) ([]*domain.Product, error)

	// DecrementStock atomically subtracts qty if enough stock remains. Returns
	// false when the conditional update matched no row.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	// IncrementStock adds qty back (restock or cancellation).
	IncrementStock(ctx context.Context, id string, qty int) error
	// SetStock sets the absolute stock quantity.
	SetStock(ctx context.Context, id string, qty int) error
	IncrementViewCount(ctx context.Context, id string) error
	IncrementSalesCount(ctx context.Context, id string, qty int) error
	// SetRating stores the review rating rollup.
	SetRating(ctx context.Context, id string, averageHundredths, count int) error

	AddImage(ctx context.Context, img *domain.Image) error
	DeleteImage(ctx context.Context, productID, imageID string) error

	// WithTx returns a repository bound to tx for use inside a unit of work.
	WithTx(tx *sql.Tx) Repository
}
