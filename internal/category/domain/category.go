// Package domain defines the product category entity. Categories form a tree
// through the parent reference; the slug is the stable URL key.
package domain

import "time"

// Category is a node in the catalog taxonomy.
type Category struct {
	ID          string
	Name        string
	Description string
	Slug        string
	ImageURL    string
	Active      bool
	SortOrder   int
	ParentID    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
