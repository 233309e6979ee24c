package service

import (
	"context"
	"testing"

	"ecommerce-platform/backend/internal/address/domain"
	"ecommerce-platform/backend/internal/apperr"
	userdomain "ecommerce-platform/backend/internal/user/domain"
)

// fakeRepo is an in-memory address Repository.
type fakeRepo struct {
	addresses map[string]*domain.Address
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{addresses: make(map[string]*domain.Address)}
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Address, error) {
	if a, ok := f.addresses[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) Create(_ context.Context, a *domain.Address) error {
	cp := *a
	f.addresses[a.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, a *domain.Address) error {
	cp := *a
	f.addresses[a.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if a, ok := f.addresses[id]; ok {
		a.Active = false
		a.Default = false
	}
	return nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string) ([]*domain.Address, error) {
	var out []*domain.Address
	for _, a := range f.addresses {
		if a.UserID == userID && a.Active {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ClearDefault(_ context.Context, userID string, t domain.AddressType) error {
	for _, a := range f.addresses {
		if a.UserID == userID && a.UsableFor(t) {
			a.Default = false
		}
	}
	return nil
}

// fakeAccounts resolves a fixed user set.
type fakeAccounts struct {
	byID map[string]*userdomain.User
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func newTestService(repo *fakeRepo) *Service {
	accounts := &fakeAccounts{byID: map[string]*userdomain.User{
		"u-1": {ID: "u-1", Username: "alice", FirstName: "Alice", LastName: "Smith"},
	}}
	return NewService(repo, accounts)
}

func validInput() Input {
	return Input{
		Type:          "SHIPPING",
		StreetAddress: "1 Main St",
		City:          "Springfield",
		State:         "IL",
		PostalCode:    "62701",
		Country:       "US",
	}
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	a, err := svc.Create(context.Background(), "u-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !a.Default {
		t.Errorf("first address should be default")
	}

	b, err := svc.Create(context.Background(), "u-1", validInput())
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if b.Default {
		t.Errorf("second address should not be default unless requested")
	}
}

func TestNewDefaultClearsPrevious(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	a, _ := svc.Create(context.Background(), "u-1", validInput())
	in := validInput()
	in.Default = true
	b, err := svc.Create(context.Background(), "u-1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !b.Default {
		t.Errorf("requested default not honored")
	}
	if repo.addresses[a.ID].Default {
		t.Errorf("previous default not cleared")
	}
}

func TestSetDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	a, _ := svc.Create(context.Background(), "u-1", validInput())
	b, _ := svc.Create(context.Background(), "u-1", validInput())

	got, err := svc.SetDefault(context.Background(), "u-1", b.ID)
	if err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if !got.Default {
		t.Errorf("address not marked default")
	}
	if repo.addresses[a.ID].Default {
		t.Errorf("old default not cleared")
	}
}

func TestOwnershipEnforced(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	a, _ := svc.Create(context.Background(), "u-1", validInput())

	if _, err := svc.Get(context.Background(), "u-2", a.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("kind = %v, want forbidden", apperr.KindOf(err))
	}
	if err := svc.Delete(context.Background(), "u-2", a.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("delete kind = %v, want forbidden", apperr.KindOf(err))
	}
}

func TestDeleteDeactivates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	a, _ := svc.Create(context.Background(), "u-1", validInput())
	if err := svc.Delete(context.Background(), "u-1", a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// The row survives for order references but is gone from the book.
	if repo.addresses[a.ID] == nil {
		t.Fatalf("address row removed entirely")
	}
	if _, err := svc.Get(context.Background(), "u-1", a.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not found after delete", apperr.KindOf(err))
	}
}

func TestDefaultsArePerType(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	ship, _ := svc.Create(context.Background(), "u-1", validInput())
	in := validInput()
	in.Type = "BILLING"
	bill, err := svc.Create(context.Background(), "u-1", in)
	if err != nil {
		t.Fatalf("Create billing: %v", err)
	}
	if !ship.Default || !bill.Default {
		t.Fatalf("first address of each type should be default: shipping=%v billing=%v", ship.Default, bill.Default)
	}
	if !repo.addresses[ship.ID].Default {
		t.Errorf("billing default cleared the shipping default")
	}

	// A BOTH default overlaps and clears both.
	in = validInput()
	in.Type = "BOTH"
	in.Default = true
	if _, err := svc.Create(context.Background(), "u-1", in); err != nil {
		t.Fatalf("Create both: %v", err)
	}
	if repo.addresses[ship.ID].Default || repo.addresses[bill.ID].Default {
		t.Errorf("BOTH default should clear shipping and billing defaults")
	}
}

func TestRecipientFallsBackToUserName(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	a, err := svc.Create(context.Background(), "u-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.FirstName != "Alice" || a.LastName != "Smith" {
		t.Errorf("recipient = %q %q, want profile name", a.FirstName, a.LastName)
	}

	in := validInput()
	in.FirstName = "Bob"
	in.LastName = "Jones"
	b, err := svc.Create(context.Background(), "u-1", in)
	if err != nil {
		t.Fatalf("Create with override: %v", err)
	}
	if b.FirstName != "Bob" || b.LastName != "Jones" {
		t.Errorf("recipient override not kept: %q %q", b.FirstName, b.LastName)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := newTestService(newFakeRepo())
	in := validInput()
	in.Type = "WAREHOUSE"
	if _, err := svc.Create(context.Background(), "u-1", in); apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Errorf("kind = %v, want invalid argument", apperr.KindOf(err))
	}
}
