// Package domain defines the shopping cart. Totals are never stored; they are
// recomputed from the items and current product prices on every read.
package domain

import (
	"time"

	productdomain "ecommerce-platform/backend/internal/product/domain"
)

// Cart is a user's shopping cart. Each user has at most one.
type Cart struct {
	ID     string
	UserID string
	Items  []Item

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a product line in a cart. Product is the current catalog entry,
// loaded with the cart.
type Item struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	Product   *productdomain.Product

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubtotalCents is the item's quantity priced at the current product price.
func (i *Item) SubtotalCents() int64 {
	if i.Product == nil {
		return 0
	}
	return int64(i.Quantity) * i.Product.PriceCents
}

// TotalItemsCount is the sum of item quantities; zero for an empty cart.
func (c *Cart) TotalItemsCount() int {
	var n int
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

// SubtotalCents is the cart total at current product prices; zero for an empty
// cart.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].SubtotalCents()
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Item returns the line for productID, or nil.
func (c *Cart) Item(productID string) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
