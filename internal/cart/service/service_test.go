package service

import (
	"context"
	"database/sql"
	"testing"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/cart/domain"
	"ecommerce-platform/backend/internal/cart/repository"
	productdomain "ecommerce-platform/backend/internal/product/domain"
	productrepo "ecommerce-platform/backend/internal/product/repository"
)

// fakeCartRepo is an in-memory cart Repository.
type fakeCartRepo struct {
	carts    map[string]*domain.Cart // by user id
	products *fakeProducts
}

func (f *fakeCartRepo) GetByUserID(_ context.Context, userID string) (*domain.Cart, error) {
	c, ok := f.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = make([]domain.Item, len(c.Items))
	for i, item := range c.Items {
		cp.Items[i] = item
		cp.Items[i].Product = f.products.byID[item.ProductID]
	}
	return &cp, nil
}

func (f *fakeCartRepo) Create(_ context.Context, c *domain.Cart) error {
	cp := *c
	f.carts[c.UserID] = &cp
	return nil
}

func (f *fakeCartRepo) cartByID(cartID string) *domain.Cart {
	for _, c := range f.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (f *fakeCartRepo) AddItem(_ context.Context, item *domain.Item) error {
	if c := f.cartByID(item.CartID); c != nil {
		c.Items = append(c.Items, *item)
	}
	return nil
}

func (f *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID string, quantity int) error {
	for _, c := range f.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
			}
		}
	}
	return nil
}

func (f *fakeCartRepo) DeleteItem(_ context.Context, itemID string) error {
	for _, c := range f.carts {
		kept := c.Items[:0]
		for _, item := range c.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		c.Items = kept
	}
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, cartID string) error {
	if c := f.cartByID(cartID); c != nil {
		c.Items = nil
	}
	return nil
}

func (f *fakeCartRepo) Touch(context.Context, string) error { return nil }

func (f *fakeCartRepo) WithTx(*sql.Tx) repository.Repository { return f }

// fakeProducts implements only the product lookups the cart needs; the rest of
// the interface is unused here.
type fakeProducts struct {
	productrepo.Repository
	byID map[string]*productdomain.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*productdomain.Product, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func newTestCart() (*Service, *fakeCartRepo, *fakeProducts) {
	products := &fakeProducts{byID: map[string]*productdomain.Product{
		"p-1": {ID: "p-1", Name: "Widget", PriceCents: 1000, StockQuantity: 5, Active: true, Status: productdomain.ProductActive},
		"p-2": {ID: "p-2", Name: "Gadget", PriceCents: 250, StockQuantity: 2, Active: true, Status: productdomain.ProductActive},
		"p-off": {ID: "p-off", Name: "Retired", PriceCents: 100, StockQuantity: 5, Active: true,
			Status: productdomain.ProductDiscontinued},
	}}
	repo := &fakeCartRepo{carts: make(map[string]*domain.Cart), products: products}
	return NewService(repo, products), repo, products
}

func TestGetCreatesCartOnFirstUse(t *testing.T) {
	svc, repo, _ := newTestCart()

	c, err := svc.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.UserID != "u-1" || !c.IsEmpty() {
		t.Errorf("cart = %+v, want empty cart for u-1", c)
	}
	if repo.carts["u-1"] == nil {
		t.Errorf("cart was not persisted")
	}

	again, err := svc.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if again.ID != c.ID {
		t.Errorf("second Get created a new cart")
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	svc, _, _ := newTestCart()

	if _, err := svc.AddItem(context.Background(), "u-1", "p-1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	c, err := svc.AddItem(context.Background(), "u-1", "p-1", 3)
	if err != nil {
		t.Fatalf("AddItem merge: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("items = %d, want 1 merged line", len(c.Items))
	}
	if c.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", c.Items[0].Quantity)
	}
	if got := c.SubtotalCents(); got != 5000 {
		t.Errorf("subtotal = %d, want 5000", got)
	}
}

func TestAddItemRejectsOverStock(t *testing.T) {
	svc, _, _ := newTestCart()

	if _, err := svc.AddItem(context.Background(), "u-1", "p-2", 3); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("over stock: kind = %v, want invalid argument", apperr.KindOf(err))
	}

	if _, err := svc.AddItem(context.Background(), "u-1", "p-2", 2); err != nil {
		t.Fatalf("AddItem at stock limit: %v", err)
	}
	// Merging past the stock limit must fail and leave the line unchanged.
	if _, err := svc.AddItem(context.Background(), "u-1", "p-2", 1); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("merge over stock: kind = %v, want invalid argument", apperr.KindOf(err))
	}
	c, _ := svc.Get(context.Background(), "u-1")
	if line := c.Item("p-2"); line == nil || line.Quantity != 2 {
		t.Errorf("line after failed merge = %+v, want quantity 2", line)
	}
}

func TestAddItemUnavailableProduct(t *testing.T) {
	svc, _, _ := newTestCart()

	if _, err := svc.AddItem(context.Background(), "u-1", "p-off", 1); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("discontinued: kind = %v, want invalid argument", apperr.KindOf(err))
	}
	if _, err := svc.AddItem(context.Background(), "u-1", "missing", 1); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown product: kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, _, _ := newTestCart()

	if _, err := svc.AddItem(context.Background(), "u-1", "p-1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	c, err := svc.UpdateItemQuantity(context.Background(), "u-1", "p-1", 4)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if c.Item("p-1").Quantity != 4 {
		t.Errorf("quantity = %d, want 4", c.Item("p-1").Quantity)
	}

	// Quantity zero removes the line.
	c, err = svc.UpdateItemQuantity(context.Background(), "u-1", "p-1", 0)
	if err != nil {
		t.Fatalf("UpdateItemQuantity to zero: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("cart not empty after zero-quantity update")
	}

	if _, err := svc.UpdateItemQuantity(context.Background(), "u-1", "p-1", 1); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("absent line: kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestClear(t *testing.T) {
	svc, _, _ := newTestCart()

	if _, err := svc.AddItem(context.Background(), "u-1", "p-1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), "u-1", "p-2", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	c, err := svc.Clear(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !c.IsEmpty() || c.TotalItemsCount() != 0 || c.SubtotalCents() != 0 {
		t.Errorf("cart after clear = %+v, want empty with zero totals", c)
	}
}
