// Package service implements catalog taxonomy management.
package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/category/domain"
	"ecommerce-platform/backend/internal/category/repository"
)

// Service manages categories.
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

// NewService builds a category service.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput carries the fields for category creation.
type CreateInput struct {
	Name        string
	Description string
	Slug        string
	ImageURL    string
	SortOrder   int
	ParentID    *string
}

// Create adds a category. An empty slug is derived from the name; slugs are
// unique across the taxonomy.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Category, error) {
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Name)
	}
	taken, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Internal("checking slug", err)
	}
	if taken {
		return nil, apperr.Conflict("category slug already exists: %s", slug)
	}
	if in.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, apperr.Internal("loading parent category", err)
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category not found: %s", *in.ParentID)
		}
	}

	now := s.now().UTC()
	c := &domain.Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Slug:        slug,
		ImageURL:    in.ImageURL,
		Active:      true,
		SortOrder:   in.SortOrder,
		ParentID:    in.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.Internal("creating category", err)
	}
	return c, nil
}

// Get returns the category for id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading category", err)
	}
	if c == nil {
		return nil, apperr.NotFound("category not found: %s", id)
	}
	return c, nil
}

// GetBySlug returns the category for slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Internal("loading category", err)
	}
	if c == nil {
		return nil, apperr.NotFound("category not found: %s", slug)
	}
	return c, nil
}

// UpdateInput carries the mutable category fields. Nil pointers leave the field
// unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	SortOrder   *int
	Active      *bool
}

// Update applies the given changes.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ImageURL != nil {
		c.ImageURL = *in.ImageURL
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apperr.Internal("updating category", err)
	}
	return c, nil
}

// Delete removes a category. Categories with children or products are refused.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return apperr.Internal("checking children", err)
	}
	if hasChildren {
		return apperr.InvalidArgument("category has subcategories and cannot be deleted")
	}
	hasProducts, err := s.repo.HasProducts(ctx, id)
	if err != nil {
		return apperr.Internal("checking products", err)
	}
	if hasProducts {
		return apperr.InvalidArgument("category has products and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("deleting category", err)
	}
	return nil
}

// ListRoot returns active root categories.
func (s *Service) ListRoot(ctx context.Context) ([]*domain.Category, error) {
	out, err := s.repo.ListRoot(ctx)
	if err != nil {
		return nil, apperr.Internal("listing categories", err)
	}
	return out, nil
}

// ListChildren returns active children of the given category.
func (s *Service) ListChildren(ctx context.Context, parentID string) ([]*domain.Category, error) {
	if _, err := s.Get(ctx, parentID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, apperr.Internal("listing subcategories", err)
	}
	return out, nil
}

// ListAll returns every category including inactive ones.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Category, error) {
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("listing categories", err)
	}
	return out, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a name: lowercase, non-alphanumerics
// collapsed to single hyphens.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
