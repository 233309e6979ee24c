package repository

import (
	"context"
	"time"

	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/user/domain"
)

// Repository defines persistence for users. Get* methods return (nil, nil) when
// no row matches; errors are database failures only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByUsernameOrEmail resolves a login identifier against either unique key.
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	// Search matches the query case-insensitively against username, email,
	// first name, and last name.
	Search(ctx context.Context, query string, limit, offset int) ([]*domain.User, error)

	// Column-targeted login bookkeeping writes.
	UpdateFailedLoginAttempts(ctx context.Context, id string, attempts int) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// Lock clears the non-locked flag and records the lockout timestamp.
	Lock(ctx context.Context, id string, lockoutTime time.Time) error
	// Unlock sets the non-locked flag, clears the lockout timestamp, and resets
	// the failed-attempt counter.
	Unlock(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRoles(ctx context.Context, id string, roles []rbac.Role) error
}
