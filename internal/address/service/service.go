// Package service implements address book management. Setting a default
// address clears the previous default first.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecommerce-platform/backend/internal/address/domain"
	"ecommerce-platform/backend/internal/address/repository"
	"ecommerce-platform/backend/internal/apperr"
	userdomain "ecommerce-platform/backend/internal/user/domain"
)

// Accounts provides the profile fields used when an address carries no
// recipient name of its own.
type Accounts interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Service manages a user's addresses.
type Service struct {
	repo     repository.Repository
	accounts Accounts
	now      func() time.Time
}

// NewService builds an address service.
func NewService(repo repository.Repository, accounts Accounts) *Service {
	return &Service{repo: repo, accounts: accounts, now: time.Now}
}

// Input carries the address fields for create and update.
type Input struct {
	Type          string
	StreetAddress string
	AddressLine2  string
	City          string
	State         string
	PostalCode    string
	Country       string
	Default       bool
	FirstName     string
	LastName      string
	PhoneNumber   string
	Company       string
}

// recipientNames returns the address's own recipient name, or the user's
// profile name when the address carries none.
func (s *Service) recipientNames(ctx context.Context, userID string, in Input) (first, last string, err error) {
	if in.FirstName != "" || in.LastName != "" {
		return in.FirstName, in.LastName, nil
	}
	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return "", "", apperr.Internal("loading user", err)
	}
	if u == nil {
		return "", "", nil
	}
	return u.FirstName, u.LastName, nil
}

// Create adds an address to the user's book. A new default clears the previous
// default of any overlapping type; the user's first address for a type becomes
// the default automatically.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*domain.Address, error) {
	t := domain.AddressType(in.Type)
	if !t.Valid() {
		return nil, apperr.InvalidArgument("unknown address type: %s", in.Type)
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("listing addresses", err)
	}
	haveType := false
	for _, a := range existing {
		if a.UsableFor(t) {
			haveType = true
			break
		}
	}
	isDefault := in.Default || !haveType
	if isDefault {
		if err := s.repo.ClearDefault(ctx, userID, t); err != nil {
			return nil, apperr.Internal("clearing default address", err)
		}
	}

	first, last, err := s.recipientNames(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &domain.Address{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          t,
		StreetAddress: in.StreetAddress,
		AddressLine2:  in.AddressLine2,
		City:          in.City,
		State:         in.State,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		Default:       isDefault,
		Active:        true,
		FirstName:     first,
		LastName:      last,
		PhoneNumber:   in.PhoneNumber,
		Company:       in.Company,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperr.Internal("creating address", err)
	}
	return a, nil
}

// get loads an address and checks ownership.
func (s *Service) get(ctx context.Context, userID, id string) (*domain.Address, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading address", err)
	}
	if a == nil || !a.Active {
		return nil, apperr.NotFound("address not found: %s", id)
	}
	if a.UserID != userID {
		return nil, apperr.Forbidden("address belongs to another user")
	}
	return a, nil
}

// Get returns one of the user's addresses.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Address, error) {
	return s.get(ctx, userID, id)
}

// List returns the user's active addresses, default first.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Address, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("listing addresses", err)
	}
	return out, nil
}

// Update rewrites one of the user's addresses.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*domain.Address, error) {
	a, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t := domain.AddressType(in.Type)
	if !t.Valid() {
		return nil, apperr.InvalidArgument("unknown address type: %s", in.Type)
	}
	if in.Default && !a.Default {
		if err := s.repo.ClearDefault(ctx, userID, t); err != nil {
			return nil, apperr.Internal("clearing default address", err)
		}
	}
	first, last, err := s.recipientNames(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	a.Type = t
	a.StreetAddress = in.StreetAddress
	a.AddressLine2 = in.AddressLine2
	a.City = in.City
	a.State = in.State
	a.PostalCode = in.PostalCode
	a.Country = in.Country
	a.Default = in.Default
	a.FirstName = first
	a.LastName = last
	a.PhoneNumber = in.PhoneNumber
	a.Company = in.Company
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal("updating address", err)
	}
	return a, nil
}

// SetDefault makes the address the user's default.
func (s *Service) SetDefault(ctx context.Context, userID, id string) (*domain.Address, error) {
	a, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ClearDefault(ctx, userID, a.Type); err != nil {
		return nil, apperr.Internal("clearing default address", err)
	}
	a.Default = true
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal("updating address", err)
	}
	return a, nil
}

// Delete removes an address from the user's book. The row is deactivated, not
// deleted, because orders reference it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("deleting address", err)
	}
	return nil
}
