// Package service implements user account management: registration, profile
// updates, credential changes, and the account-security state machine (failed
// login bookkeeping, lockout, enable/disable, role assignment).
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/email"
	"ecommerce-platform/backend/internal/events"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/security"
	"ecommerce-platform/backend/internal/user/domain"
	"ecommerce-platform/backend/internal/user/repository"
	"ecommerce-platform/backend/pkg/logkey"
)

// Service orchestrates user account operations over the repository.
type Service struct {
	repo             repository.Repository
	hasher           *security.Hasher
	mail             email.Sender
	emitter          events.Emitter
	lockoutThreshold int
	now              func() time.Time
}

// NewService builds a user service. emitter may be nil; events are then skipped.
func NewService(repo repository.Repository, hasher *security.Hasher, mail email.Sender, emitter events.Emitter, lockoutThreshold int) *Service {
	if lockoutThreshold <= 0 {
		lockoutThreshold = 5
	}
	return &Service{
		repo:             repo,
		hasher:           hasher,
		mail:             mail,
		emitter:          emitter,
		lockoutThreshold: lockoutThreshold,
		now:              time.Now,
	}
}

// RegisterInput carries the fields for account creation.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Register creates a new account. Username is checked for conflict before
// email. New accounts are enabled, unverified, PENDING_VERIFICATION, and hold
// the USER role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	taken, err := s.repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, apperr.Internal("checking username", err)
	}
	if taken {
		return nil, apperr.Conflict("username already exists: %s", in.Username)
	}
	taken, err = s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal("checking email", err)
	}
	if taken {
		return nil, apperr.Conflict("email already exists: %s", in.Email)
	}

	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, apperr.Internal("hashing password", err)
	}

	now := s.now().UTC()
	u := &domain.User{
		ID:                    uuid.NewString(),
		Username:              in.Username,
		Email:                 in.Email,
		PasswordHash:          hash,
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		PhoneNumber:           in.PhoneNumber,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		EmailVerified:         false,
		Status:                domain.StatusPendingVerification,
		Roles:                 []rbac.Role{rbac.RoleUser},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperr.Internal("creating user", err)
	}

	if s.mail != nil {
		if err := s.mail.SendVerificationEmail(ctx, u.Email, u.Username); err != nil {
			slog.WarnContext(ctx, "verification email failed",
				slog.String(logkey.UserID, u.ID), slog.Any(logkey.Error, err))
		}
	}
	events.EmitAsync(s.emitter, &events.Event{
		ID:         uuid.NewString(),
		Type:       events.TypeAccountCreated,
		Subject:    u.ID,
		OccurredAt: now,
		Payload:    map[string]string{"username": u.Username},
	})

	return u, nil
}

// Get returns the user for id.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found: %s", id)
	}
	return u, nil
}

// GetByUsername returns the user with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Internal("loading user", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found: %s", username)
	}
	return u, nil
}

// FindForLogin resolves a login identifier against username or email. Returns
// (nil, nil) when no account matches so the caller can answer with a uniform
// bad-credentials error instead of leaking which accounts exist.
func (s *Service) FindForLogin(ctx context.Context, identifier string) (*domain.User, error) {
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, apperr.Internal("loading user", err)
	}
	return u, nil
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset = clampPage(limit, offset)
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("listing users", err)
	}
	return users, nil
}

// Search returns a page of users matching query.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*domain.User, error) {
	limit, offset = clampPage(limit, offset)
	users, err := s.repo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, apperr.Internal("searching users", err)
	}
	return users, nil
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// UpdateProfile updates the user's profile. Changing email re-checks the unique
// key and resets verification.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != u.Email {
		taken, err := s.repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, apperr.Internal("checking email", err)
		}
		if taken {
			return nil, apperr.Conflict("email already exists: %s", in.Email)
		}
		u.Email = in.Email
		u.EmailVerified = false
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.PhoneNumber != "" {
		u.PhoneNumber = in.PhoneNumber
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("updating user", err)
	}
	return u, nil
}

// Delete removes the user and its dependent rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal("deleting user", err)
	}
	return nil
}

// VerifyEmail marks the email verified and activates the account whatever its
// prior status.
func (s *Service) VerifyEmail(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.EmailVerified = true
	u.Status = domain.StatusActive
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("updating user", err)
	}
	return u, nil
}

// ChangePassword verifies the current password and the confirmation before
// storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, id, current, newPassword, confirm string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(current)); err != nil {
		return apperr.InvalidArgument("current password is incorrect")
	}
	if newPassword != confirm {
		return apperr.InvalidArgument("password confirmation does not match")
	}
	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return apperr.Internal("hashing password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return apperr.Internal("updating password", err)
	}
	return nil
}

// ResetPassword stores a new password hash without checking the current one.
// Callers must have verified the reset token first.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword, confirm string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if newPassword != confirm {
		return apperr.InvalidArgument("password confirmation does not match")
	}
	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return apperr.Internal("hashing password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return apperr.Internal("updating password", err)
	}
	return nil
}

// RecordFailedLogin increments the failed-attempt counter and locks the account
// when the counter reaches the lockout threshold.
func (s *Service) RecordFailedLogin(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	attempts := u.FailedLoginAttempts + 1
	if err := s.repo.UpdateFailedLoginAttempts(ctx, id, attempts); err != nil {
		return apperr.Internal("updating failed attempts", err)
	}
	if attempts >= s.lockoutThreshold {
		if err := s.repo.Lock(ctx, id, s.now().UTC()); err != nil {
			return apperr.Internal("locking account", err)
		}
		slog.WarnContext(ctx, "account locked after repeated failed logins",
			slog.String(logkey.UserID, id), slog.Int("attempts", attempts))
	}
	return nil
}

// RecordSuccessfulLogin resets the failed-attempt counter and stamps the login time.
func (s *Service) RecordSuccessfulLogin(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.FailedLoginAttempts > 0 {
		if err := s.repo.UpdateFailedLoginAttempts(ctx, id, 0); err != nil {
			return apperr.Internal("resetting failed attempts", err)
		}
	}
	if err := s.repo.UpdateLastLogin(ctx, id, s.now().UTC()); err != nil {
		return apperr.Internal("updating last login", err)
	}
	return nil
}

// Lock locks the account immediately.
func (s *Service) Lock(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Lock(ctx, id, s.now().UTC()); err != nil {
		return apperr.Internal("locking account", err)
	}
	return nil
}

// Unlock clears the lock and the failed-attempt counter.
func (s *Service) Unlock(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Unlock(ctx, id); err != nil {
		return apperr.Internal("unlocking account", err)
	}
	return nil
}

// SetEnabled enables or disables the account, moving status to ACTIVE or
// INACTIVE respectively.
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Enabled = enabled
	if enabled {
		u.Status = domain.StatusActive
	} else {
		u.Status = domain.StatusInactive
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("updating user", err)
	}
	return u, nil
}

// UpdateRoles replaces the user's role set. Unknown role tags are rejected; an
// empty set is allowed.
func (s *Service) UpdateRoles(ctx context.Context, id string, tags []string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	roles := make([]rbac.Role, 0, len(tags))
	for _, t := range tags {
		r, err := rbac.Parse(t)
		if err != nil {
			return nil, apperr.InvalidArgument("unknown role: %s", t)
		}
		roles = append(roles, r)
	}
	if err := s.repo.UpdateRoles(ctx, id, roles); err != nil {
		return nil, apperr.Internal("updating roles", err)
	}
	u.Roles = roles
	return u, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
