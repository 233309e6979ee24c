package domain

import (
	"time"

	"ecommerce-platform/backend/internal/platform/rbac"
)

// User is the core user entity with authentication and account-security state.
// The lock flag and LockoutTime form an axis independent of Status.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string

	Enabled               bool
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool
	EmailVerified         bool

	LastLoginAt         *time.Time
	FailedLoginAttempts int
	LockoutTime         *time.Time

	Status UserStatus
	Roles  []rbac.Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusActive              UserStatus = "ACTIVE"
	StatusInactive            UserStatus = "INACTIVE"
	StatusSuspended           UserStatus = "SUSPENDED"
	StatusPendingVerification UserStatus = "PENDING_VERIFICATION"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPendingVerification:
		return true
	}
	return false
}

// IsAccountNonLocked reports whether the account is effectively unlocked at now:
// the lock flag is clear, or the lockout timestamp has passed.
func (u *User) IsAccountNonLocked(now time.Time) bool {
	return u.AccountNonLocked && (u.LockoutTime == nil || u.LockoutTime.Before(now))
}

// IsSignInEligible reports whether the user may sign in at now:
// enabled, status ACTIVE, and not locked.
func (u *User) IsSignInEligible(now time.Time) bool {
	return u.Enabled && u.Status == StatusActive && u.IsAccountNonLocked(now)
}

// Authorities returns the capability labels derived from the user's roles.
func (u *User) Authorities() []string {
	return rbac.Authorities(u.Roles)
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
