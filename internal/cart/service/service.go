// Package service implements shopping cart operations. Adding a product that is
// already in the cart merges quantities; every mutation re-validates against
// current stock.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/cart/domain"
	"ecommerce-platform/backend/internal/cart/repository"
	productrepo "ecommerce-platform/backend/internal/product/repository"
)

// Service manages shopping carts.
type Service struct {
	repo     repository.Repository
	products productrepo.Repository
	now      func() time.Time
}

// NewService builds a cart service.
func NewService(repo repository.Repository, products productrepo.Repository) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// Get returns the user's cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("loading cart", err)
	}
	if c != nil {
		return c, nil
	}

	now := s.now().UTC()
	c = &domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.Internal("creating cart", err)
	}
	return c, nil
}

// AddItem puts qty units of a product in the cart. If the product is already
// present the quantities merge. The merged quantity must not exceed stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, apperr.InvalidArgument("quantity must be positive")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("loading product", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found: %s", productID)
	}
	if !p.IsAvailable() {
		return nil, apperr.InvalidArgument("product is not available: %s", productID)
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if line := c.Item(productID); line != nil {
		merged := line.Quantity + qty
		if merged > p.StockQuantity {
			return nil, apperr.InvalidArgument("insufficient stock for product %s", productID)
		}
		if err := s.repo.UpdateItemQuantity(ctx, line.ID, merged); err != nil {
			return nil, apperr.Internal("updating cart item", err)
		}
	} else {
		if qty > p.StockQuantity {
			return nil, apperr.InvalidArgument("insufficient stock for product %s", productID)
		}
		item := &domain.Item{
			ID:        uuid.NewString(),
			CartID:    c.ID,
			ProductID: productID,
			Quantity:  qty,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.AddItem(ctx, item); err != nil {
			return nil, apperr.Internal("adding cart item", err)
		}
	}
	if err := s.repo.Touch(ctx, c.ID); err != nil {
		return nil, apperr.Internal("updating cart", err)
	}
	return s.Get(ctx, userID)
}

// UpdateItemQuantity sets the quantity of a product line. Quantity zero removes
// the line.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, productID string, qty int) (*domain.Cart, error) {
	if qty < 0 {
		return nil, apperr.InvalidArgument("quantity must not be negative")
	}
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	line := c.Item(productID)
	if line == nil {
		return nil, apperr.NotFound("product not in cart: %s", productID)
	}

	if qty == 0 {
		if err := s.repo.DeleteItem(ctx, line.ID); err != nil {
			return nil, apperr.Internal("removing cart item", err)
		}
	} else {
		if line.Product != nil && qty > line.Product.StockQuantity {
			return nil, apperr.InvalidArgument("insufficient stock for product %s", productID)
		}
		if err := s.repo.UpdateItemQuantity(ctx, line.ID, qty); err != nil {
			return nil, apperr.Internal("updating cart item", err)
		}
	}
	if err := s.repo.Touch(ctx, c.ID); err != nil {
		return nil, apperr.Internal("updating cart", err)
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes a product line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	return s.UpdateItemQuantity(ctx, userID, productID, 0)
}

// Clear removes every line from the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, c.ID); err != nil {
		return nil, apperr.Internal("clearing cart", err)
	}
	if err := s.repo.Touch(ctx, c.ID); err != nil {
		return nil, apperr.Internal("updating cart", err)
	}
	return s.Get(ctx, userID)
}
