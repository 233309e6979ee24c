// Package domain holds the product review entity.
package domain

import "time"

// Review is a customer's rating of a product. Reviews are created unapproved
// and only count toward the product's rating rollup once approved.
type Review struct {
	ID        string
	ProductID string
	UserID    string

	// Rating is the star rating, 1 through 5.
	Rating  int
	Title   string
	Comment string

	// Approved gates visibility and rollup inclusion; set by moderation.
	Approved bool
	// Verified marks reviewers with a delivered order containing the product.
	Verified bool

	HelpfulCount   int
	UnhelpfulCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingValid reports whether the star rating is in range.
func (r *Review) RatingValid() bool {
	return r.Rating >= 1 && r.Rating <= 5
}
