// Package domain defines the product entity and its stock and availability
// rules. Monetary amounts are integer cents; ratings are stored in hundredths
// so no float arithmetic touches persisted values.
package domain

import "time"

// ProductStatus is the catalog lifecycle state of a product.
type ProductStatus string

const (
	ProductActive          ProductStatus = "ACTIVE"
	ProductInactive        ProductStatus = "INACTIVE"
	ProductOutOfStock      ProductStatus = "OUT_OF_STOCK"
	ProductDiscontinued    ProductStatus = "DISCONTINUED"
	ProductPendingApproval ProductStatus = "PENDING_APPROVAL"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductOutOfStock,
		ProductDiscontinued, ProductPendingApproval:
		return true
	}
	return false
}

// Product is a sellable catalog item.
type Product struct {
	ID          string
	Name        string
	Description string
	SKU         string

	PriceCents int64
	CostCents  int64

	StockQuantity     int
	MinimumStockLevel int

	Active   bool
	Featured bool

	Brand       string
	Model       string
	Color       string
	Size        string
	WeightGrams *int64
	Dimensions  string

	Status     ProductStatus
	CategoryID string

	// RatingAverageHundredths is the mean review rating * 100 (e.g. 450 = 4.5);
	// zero when the product has no approved reviews.
	RatingAverageHundredths int
	RatingCount             int
	ViewCount               int64
	SalesCount              int64

	Images []Image

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image is a product photo. Exactly one image per product should be primary.
type Image struct {
	ID        string
	ProductID string
	URL       string
	AltText   string
	Primary   bool
	SortOrder int
	Active    bool
	CreatedAt time.Time
}

// IsAvailable reports whether the product can be purchased: active, catalog
// status ACTIVE, and in stock.
func (p *Product) IsAvailable() bool {
	return p.Active && p.Status == ProductActive && p.StockQuantity > 0
}

// IsLowStock reports whether stock is at or below the minimum level.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinimumStockLevel
}

// RatingAverage returns the mean rating as a float for presentation.
func (p *Product) RatingAverage() float64 {
	return float64(p.RatingAverageHundredths) / 100
}

// PrimaryImageURL returns the primary image URL, or the first image, or "".
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.Primary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}
