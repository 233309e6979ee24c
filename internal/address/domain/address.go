// Package domain defines user addresses. A user has at most one default
// address per type.
package domain

import "time"

// AddressType distinguishes shipping and billing addresses.
type AddressType string

const (
	TypeShipping AddressType = "SHIPPING"
	TypeBilling  AddressType = "BILLING"
	TypeBoth     AddressType = "BOTH"
)

// Valid reports whether t is a known address type.
func (t AddressType) Valid() bool {
	switch t {
	case TypeShipping, TypeBilling, TypeBoth:
		return true
	}
	return false
}

// Address is a postal address owned by a user.
type Address struct {
	ID     string
	UserID string
	Type   AddressType

	StreetAddress string
	AddressLine2  string
	City          string
	State         string
	PostalCode    string
	Country       string

	Default bool
	Active  bool

	FirstName   string
	LastName    string
	PhoneNumber string
	Company     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsableFor reports whether the address can serve the given purpose.
func (a *Address) UsableFor(t AddressType) bool {
	return a.Type == t || a.Type == TypeBoth || t == TypeBoth
}
