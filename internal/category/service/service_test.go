package service

import (
	"context"
	"testing"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/category/domain"
)

type fakeRepo struct {
	categories map[string]*domain.Category
	products   map[string]bool // category id -> has products
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: make(map[string]*domain.Category),
		products:   make(map[string]bool),
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	if c, ok := f.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	c, _ := f.GetBySlug(ctx, slug)
	return c != nil, nil
}

func (f *fakeRepo) Create(_ context.Context, c *domain.Category) error {
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, c *domain.Category) error {
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeRepo) ListRoot(_ context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.categories {
		if c.IsRoot() && c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListChildren(_ context.Context, parentID string) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == parentID && c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.categories {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) HasChildren(ctx context.Context, id string) (bool, error) {
	children, _ := f.ListChildren(ctx, id)
	return len(children) > 0, nil
}

func (f *fakeRepo) HasProducts(_ context.Context, id string) (bool, error) {
	return f.products[id], nil
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":         "electronics",
		"Home & Garden":       "home-garden",
		"  Spaced  Out  ":     "spaced-out",
		"Déjà Vu":             "d-j-vu",
		"already-slugged":     "already-slugged",
		"MIXED Case 123 Name": "mixed-case-123-name",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateDerivesSlug(t *testing.T) {
	svc := NewService(newFakeRepo())

	c, err := svc.Create(context.Background(), CreateInput{Name: "Home & Garden"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Slug != "home-garden" {
		t.Errorf("slug = %q, want home-garden", c.Slug)
	}
	if !c.Active {
		t.Errorf("new category inactive, want active")
	}
	if !c.IsRoot() {
		t.Errorf("category without parent is not root")
	}
}

func TestCreateSlugConflict(t *testing.T) {
	svc := NewService(newFakeRepo())

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Books"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(context.Background(), CreateInput{Name: "books!"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestCreateUnknownParent(t *testing.T) {
	svc := NewService(newFakeRepo())

	parentID := "missing"
	_, err := svc.Create(context.Background(), CreateInput{Name: "Laptops", ParentID: &parentID})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestDeleteGuards(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	parent, err := svc.Create(context.Background(), CreateInput{Name: "Electronics"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	child, err := svc.Create(context.Background(), CreateInput{Name: "Laptops", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}

	if err := svc.Delete(context.Background(), parent.ID); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("delete with children: kind = %v, want invalid argument", apperr.KindOf(err))
	}

	repo.products[child.ID] = true
	if err := svc.Delete(context.Background(), child.ID); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("delete with products: kind = %v, want invalid argument", apperr.KindOf(err))
	}

	repo.products[child.ID] = false
	if err := svc.Delete(context.Background(), child.ID); err != nil {
		t.Fatalf("delete leaf: %v", err)
	}
	if err := svc.Delete(context.Background(), parent.ID); err != nil {
		t.Fatalf("delete emptied parent: %v", err)
	}
}

func TestUpdateAppliesOnlyGivenFields(t *testing.T) {
	svc := NewService(newFakeRepo())

	c, err := svc.Create(context.Background(), CreateInput{Name: "Books", Description: "Printed things"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Books & Media"
	active := false
	got, err := svc.Update(context.Background(), c.ID, UpdateInput{Name: &name, Active: &active})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Books & Media" || got.Active {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Description != "Printed things" {
		t.Errorf("description changed unexpectedly: %q", got.Description)
	}
	if got.Slug != "books" {
		t.Errorf("slug changed on update: %q", got.Slug)
	}
}
