// Package service implements catalog product management and the inventory
// rules: conditional stock decrement, restock, and low-stock reporting.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ecommerce-platform/backend/internal/apperr"
	categoryrepo "ecommerce-platform/backend/internal/category/repository"
	"ecommerce-platform/backend/internal/product/domain"
	"ecommerce-platform/backend/internal/product/repository"
	"ecommerce-platform/backend/pkg/logkey"
)

// Service manages products and their inventory.
type Service struct {
	repo            repository.Repository
	categories      categoryrepo.Repository
	defaultMinStock int
	now             func() time.Time
}

// NewService builds a product service. defaultMinStock is applied to products
// created without an explicit minimum stock level.
func NewService(repo repository.Repository, categories categoryrepo.Repository, defaultMinStock int) *Service {
	if defaultMinStock < 0 {
		defaultMinStock = 0
	}
	return &Service{repo: repo, categories: categories, defaultMinStock: defaultMinStock, now: time.Now}
}

// CreateInput carries the fields for product creation.
type CreateInput struct {
	Name              string
	Description       string
	SKU               string
	PriceCents        int64
	CostCents         int64
	StockQuantity     int
	MinimumStockLevel *int
	Featured          bool
	Brand             string
	Model             string
	Color             string
	Size              string
	WeightGrams       *int64
	Dimensions        string
	CategoryID        string
}

// Create adds a product. The SKU must be unique and the category must exist.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if in.PriceCents <= 0 {
		return nil, apperr.InvalidArgument("price must be positive")
	}
	if in.StockQuantity < 0 {
		return nil, apperr.InvalidArgument("stock quantity must not be negative")
	}
	taken, err := s.repo.ExistsBySKU(ctx, in.SKU)
	if err != nil {
		return nil, apperr.Internal("checking sku", err)
	}
	if taken {
		return nil, apperr.Conflict("sku already exists: %s", in.SKU)
	}
	cat, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, apperr.Internal("loading category", err)
	}
	if cat == nil {
		return nil, apperr.NotFound("category not found: %s", in.CategoryID)
	}

	minStock := s.defaultMinStock
	if in.MinimumStockLevel != nil {
		if *in.MinimumStockLevel < 0 {
			return nil, apperr.InvalidArgument("minimum stock level must not be negative")
		}
		minStock = *in.MinimumStockLevel
	}

	now := s.now().UTC()
	p := &domain.Product{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Description:       in.Description,
		SKU:               in.SKU,
		PriceCents:        in.PriceCents,
		CostCents:         in.CostCents,
		StockQuantity:     in.StockQuantity,
		MinimumStockLevel: minStock,
		Active:            true,
		Featured:          in.Featured,
		Brand:             in.Brand,
		Model:             in.Model,
		Color:             in.Color,
		Size:              in.Size,
		WeightGrams:       in.WeightGrams,
		Dimensions:        in.Dimensions,
		Status:            domain.ProductActive,
		CategoryID:        in.CategoryID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal("creating product", err)
	}
	return p, nil
}

// Get returns the product for id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading product", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found: %s", id)
	}
	return p, nil
}

// GetBySKU returns the product for sku.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	p, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, apperr.Internal("loading product", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found: %s", sku)
	}
	return p, nil
}

// View returns the product and bumps its view counter. A counter failure is
// logged, not surfaced.
func (s *Service) View(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		slog.WarnContext(ctx, "view count increment failed",
			slog.String(logkey.ProductID, id), slog.Any(logkey.Error, err))
	} else {
		p.ViewCount++
	}
	return p, nil
}

// UpdateInput carries the mutable product fields. Nil pointers leave the field
// unchanged.
type UpdateInput struct {
	Name              *string
	Description       *string
	PriceCents        *int64
	CostCents         *int64
	MinimumStockLevel *int
	Active            *bool
	Featured          *bool
	Brand             *string
	Model             *string
	Color             *string
	Size              *string
	WeightGrams       *int64
	Dimensions        *string
	Status            *string
	CategoryID        *string
}

// Update applies the given changes.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.PriceCents != nil {
		if *in.PriceCents <= 0 {
			return nil, apperr.InvalidArgument("price must be positive")
		}
		p.PriceCents = *in.PriceCents
	}
	if in.CostCents != nil {
		if *in.CostCents < 0 {
			return nil, apperr.InvalidArgument("cost must not be negative")
		}
		p.CostCents = *in.CostCents
	}
	if in.MinimumStockLevel != nil {
		if *in.MinimumStockLevel < 0 {
			return nil, apperr.InvalidArgument("minimum stock level must not be negative")
		}
		p.MinimumStockLevel = *in.MinimumStockLevel
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Model != nil {
		p.Model = *in.Model
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	if in.Size != nil {
		p.Size = *in.Size
	}
	if in.WeightGrams != nil {
		p.WeightGrams = in.WeightGrams
	}
	if in.Dimensions != nil {
		p.Dimensions = *in.Dimensions
	}
	if in.Status != nil {
		st := domain.ProductStatus(*in.Status)
		if !st.Valid() {
			return nil, apperr.InvalidArgument("unknown product status: %s", *in.Status)
		}
		p.Status = st
	}
	if in.CategoryID != nil {
		cat, err := s.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, apperr.Internal("loading category", err)
		}
		if cat == nil {
			return nil, apperr.NotFound("category not found: %s", *in.CategoryID)
		}
		p.CategoryID = *in.CategoryID
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperr.Internal("updating product", err)
	}
	return p, nil
}

// Delete removes the product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("deleting product", err)
	}
	return nil
}

// ListResult is a product page with the total match count.
type ListResult struct {
	Products []*domain.Product
	Total    int
}

// List returns products matching the filter and the total count.
func (s *Service) List(ctx context.Context, f repository.ListFilter) (*ListResult, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.Sort {
	case "", repository.SortNewest, repository.SortBestSelling,
		repository.SortPriceAsc, repository.SortPriceDesc, repository.SortRating:
	default:
		return nil, apperr.InvalidArgument("unknown sort order: %s", f.Sort)
	}
	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("listing products", err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, apperr.Internal("counting products", err)
	}
	return &ListResult{Products: products, Total: total}, nil
}

// ListLowStock returns active products at or below their minimum stock level.
func (s *Service) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	out, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, apperr.Internal("listing low-stock products", err)
	}
	return out, nil
}

// SetStock sets the stock quantity to an absolute value.
func (s *Service) SetStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	if qty < 0 {
		return nil, apperr.InvalidArgument("stock quantity must not be negative")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStock(ctx, id, qty); err != nil {
		return nil, apperr.Internal("setting stock", err)
	}
	p.StockQuantity = qty
	return p, nil
}

// DecrementStock atomically reserves qty units. Fails with an invalid-argument
// error when stock is insufficient; the check and the write are one statement
// so concurrent purchases cannot oversell.
func (s *Service) DecrementStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return apperr.InvalidArgument("quantity must be positive")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	ok, err := s.repo.DecrementStock(ctx, id, qty)
	if err != nil {
		return apperr.Internal("decrementing stock", err)
	}
	if !ok {
		return apperr.InvalidArgument("insufficient stock for product %s", id)
	}
	return nil
}

// IncrementStock adds qty units back.
func (s *Service) IncrementStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return apperr.InvalidArgument("quantity must be positive")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.IncrementStock(ctx, id, qty); err != nil {
		return apperr.Internal("incrementing stock", err)
	}
	return nil
}

// AddImageInput carries the fields for attaching a product image.
type AddImageInput struct {
	URL       string
	AltText   string
	Primary   bool
	SortOrder int
}

// AddImage attaches an image to the product.
func (s *Service) AddImage(ctx context.Context, productID string, in AddImageInput) (*domain.Image, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}
	img := &domain.Image{
		ID:        uuid.NewString(),
		ProductID: productID,
		URL:       in.URL,
		AltText:   in.AltText,
		Primary:   in.Primary,
		SortOrder: in.SortOrder,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddImage(ctx, img); err != nil {
		return nil, apperr.Internal("adding product image", err)
	}
	return img, nil
}

// RemoveImage detaches an image from the product.
func (s *Service) RemoveImage(ctx context.Context, productID, imageID string) error {
	if _, err := s.Get(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, productID, imageID); err != nil {
		return apperr.Internal("removing product image", err)
	}
	return nil
}
