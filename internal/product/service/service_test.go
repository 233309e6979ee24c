package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ecommerce-platform/backend/internal/apperr"
	categorydomain "ecommerce-platform/backend/internal/category/domain"
	"ecommerce-platform/backend/internal/product/domain"
	"ecommerce-platform/backend/internal/product/repository"
)

// fakeRepo is an in-memory product Repository for service tests.
type fakeRepo struct {
	products map[string]*domain.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: make(map[string]*domain.Product)}
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := f.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	p, _ := f.GetBySKU(ctx, sku)
	return p != nil, nil
}

func (f *fakeRepo) Create(_ context.Context, p *domain.Product) error {
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p *domain.Product) error {
	if stored, ok := f.products[p.ID]; ok {
		cp := *p
		cp.StockQuantity = stored.StockQuantity
		f.products[p.ID] = &cp
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	delete(f.products, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) Count(_ context.Context, _ repository.ListFilter) (int, error) {
	return len(f.products), nil
}

func (f *fakeRepo) ListLowStock(_ context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range f.products {
		if p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	p, ok := f.products[id]
	if !ok || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	return true, nil
}

func (f *fakeRepo) IncrementStock(_ context.Context, id string, qty int) error {
	if p, ok := f.products[id]; ok {
		p.StockQuantity += qty
	}
	return nil
}

func (f *fakeRepo) SetStock(_ context.Context, id string, qty int) error {
	if p, ok := f.products[id]; ok {
		p.StockQuantity = qty
	}
	return nil
}

func (f *fakeRepo) IncrementViewCount(_ context.Context, id string) error {
	if p, ok := f.products[id]; ok {
		p.ViewCount++
	}
	return nil
}

func (f *fakeRepo) IncrementSalesCount(_ context.Context, id string, qty int) error {
	if p, ok := f.products[id]; ok {
		p.SalesCount += int64(qty)
	}
	return nil
}

func (f *fakeRepo) SetRating(_ context.Context, id string, averageHundredths, count int) error {
	if p, ok := f.products[id]; ok {
		p.RatingAverageHundredths = averageHundredths
		p.RatingCount = count
	}
	return nil
}

func (f *fakeRepo) AddImage(_ context.Context, img *domain.Image) error {
	if p, ok := f.products[img.ProductID]; ok {
		p.Images = append(p.Images, *img)
	}
	return nil
}

func (f *fakeRepo) DeleteImage(_ context.Context, productID, imageID string) error {
	p, ok := f.products[productID]
	if !ok {
		return nil
	}
	kept := p.Images[:0]
	for _, img := range p.Images {
		if img.ID != imageID {
			kept = append(kept, img)
		}
	}
	p.Images = kept
	return nil
}

func (f *fakeRepo) WithTx(*sql.Tx) repository.Repository { return f }

// fakeCategories resolves a fixed category id.
type fakeCategories struct {
	known map[string]bool
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*categorydomain.Category, error) {
	if f.known[id] {
		return &categorydomain.Category{ID: id, Name: "cat", Active: true}, nil
	}
	return nil, nil
}

func (f *fakeCategories) GetBySlug(context.Context, string) (*categorydomain.Category, error) {
	return nil, nil
}
func (f *fakeCategories) ExistsBySlug(context.Context, string) (bool, error) { return false, nil }
func (f *fakeCategories) Create(context.Context, *categorydomain.Category) error {
	return nil
}
func (f *fakeCategories) Update(context.Context, *categorydomain.Category) error {
	return nil
}
func (f *fakeCategories) Delete(context.Context, string) error { return nil }
func (f *fakeCategories) ListRoot(context.Context) ([]*categorydomain.Category, error) {
	return nil, nil
}
func (f *fakeCategories) ListChildren(context.Context, string) ([]*categorydomain.Category, error) {
	return nil, nil
}
func (f *fakeCategories) ListAll(context.Context) ([]*categorydomain.Category, error) {
	return nil, nil
}
func (f *fakeCategories) HasChildren(context.Context, string) (bool, error) { return false, nil }
func (f *fakeCategories) HasProducts(context.Context, string) (bool, error) { return false, nil }

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, &fakeCategories{known: map[string]bool{"cat-1": true}}, 10)
}

func seedProduct(repo *fakeRepo, id string, stock, minLevel int) *domain.Product {
	p := &domain.Product{
		ID:                id,
		Name:              "Widget",
		SKU:               "SKU-" + id,
		PriceCents:        1999,
		StockQuantity:     stock,
		MinimumStockLevel: minLevel,
		Active:            true,
		Status:            domain.ProductActive,
		CategoryID:        "cat-1",
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	repo.products[id] = p
	return p
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p, err := svc.Create(context.Background(), CreateInput{
		Name:          "Widget",
		SKU:           "W-1",
		PriceCents:    1999,
		StockQuantity: 5,
		CategoryID:    "cat-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.MinimumStockLevel != 10 {
		t.Errorf("minimum stock level = %d, want default 10", p.MinimumStockLevel)
	}
	if !p.Active || p.Status != domain.ProductActive {
		t.Errorf("new product should be active: active=%v status=%s", p.Active, p.Status)
	}
}

func TestCreateValidations(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 5, 10)

	cases := []struct {
		name string
		in   CreateInput
		kind apperr.Kind
	}{
		{"non-positive price", CreateInput{Name: "X", SKU: "X-1", PriceCents: 0, CategoryID: "cat-1"}, apperr.KindInvalidArgument},
		{"negative stock", CreateInput{Name: "X", SKU: "X-1", PriceCents: 100, StockQuantity: -1, CategoryID: "cat-1"}, apperr.KindInvalidArgument},
		{"duplicate sku", CreateInput{Name: "X", SKU: "SKU-p-1", PriceCents: 100, CategoryID: "cat-1"}, apperr.KindConflict},
		{"unknown category", CreateInput{Name: "X", SKU: "X-2", PriceCents: 100, CategoryID: "nope"}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			if apperr.KindOf(err) != tc.kind {
				t.Errorf("kind = %v, want %v (err: %v)", apperr.KindOf(err), tc.kind, err)
			}
		})
	}
}

func TestDecrementStock(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 5, 2)

	if err := svc.DecrementStock(context.Background(), "p-1", 3); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if got := repo.products["p-1"].StockQuantity; got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}

	// Exactly the remaining stock is allowed.
	if err := svc.DecrementStock(context.Background(), "p-1", 2); err != nil {
		t.Fatalf("DecrementStock to zero: %v", err)
	}
	if got := repo.products["p-1"].StockQuantity; got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestDecrementStockInsufficient(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 2, 2)

	err := svc.DecrementStock(context.Background(), "p-1", 3)
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("kind = %v, want invalid argument", apperr.KindOf(err))
	}
	if got := repo.products["p-1"].StockQuantity; got != 2 {
		t.Errorf("stock changed on failed decrement: %d", got)
	}
}

func TestDecrementStockRejectsNonPositiveQty(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 5, 2)

	for _, qty := range []int{0, -1} {
		if err := svc.DecrementStock(context.Background(), "p-1", qty); apperr.KindOf(err) != apperr.KindInvalidArgument {
			t.Errorf("qty %d: kind = %v, want invalid argument", qty, apperr.KindOf(err))
		}
	}
}

func TestSetStock(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 5, 2)

	p, err := svc.SetStock(context.Background(), "p-1", 0)
	if err != nil {
		t.Fatalf("SetStock: %v", err)
	}
	if p.StockQuantity != 0 || repo.products["p-1"].StockQuantity != 0 {
		t.Errorf("stock = %d/%d, want 0", p.StockQuantity, repo.products["p-1"].StockQuantity)
	}
	if p.IsAvailable() {
		t.Errorf("product with zero stock should not be available")
	}

	if _, err := svc.SetStock(context.Background(), "p-1", -1); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("kind = %v, want invalid argument", apperr.KindOf(err))
	}
	if _, err := svc.SetStock(context.Background(), "missing", 3); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestIncrementStock(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 2, 2)

	if err := svc.IncrementStock(context.Background(), "p-1", 5); err != nil {
		t.Fatalf("IncrementStock: %v", err)
	}
	if got := repo.products["p-1"].StockQuantity; got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}
}

func TestViewBumpsCounter(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 5, 2)

	p, err := svc.View(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if p.ViewCount != 1 {
		t.Errorf("returned view count = %d, want 1", p.ViewCount)
	}
	if repo.products["p-1"].ViewCount != 1 {
		t.Errorf("stored view count = %d, want 1", repo.products["p-1"].ViewCount)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "p-1", 5, 2)

	bad := "RETIRED"
	if _, err := svc.Update(context.Background(), "p-1", UpdateInput{Status: &bad}); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("kind = %v, want invalid argument", apperr.KindOf(err))
	}

	good := "DISCONTINUED"
	p, err := svc.Update(context.Background(), "p-1", UpdateInput{Status: &good})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Status != domain.ProductDiscontinued {
		t.Errorf("status = %s, want DISCONTINUED", p.Status)
	}
}

func TestListLowStock(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	seedProduct(repo, "low", 2, 10)
	seedProduct(repo, "ok", 50, 10)

	out, err := svc.ListLowStock(context.Background())
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if len(out) != 1 || out[0].ID != "low" {
		t.Errorf("low stock = %v, want only 'low'", out)
	}
}
