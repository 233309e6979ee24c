// Package service implements authentication: credential login with lockout
// bookkeeping, token refresh, and self-service registration.
package service

import (
	"context"
	"time"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/email"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/security"
	"ecommerce-platform/backend/internal/user/domain"
	userservice "ecommerce-platform/backend/internal/user/service"
)

// Accounts is the slice of the user service the auth flow needs.
type Accounts interface {
	Register(ctx context.Context, in userservice.RegisterInput) (*domain.User, error)
	// FindForLogin returns (nil, nil) when no account matches the identifier.
	FindForLogin(ctx context.Context, identifier string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	RecordFailedLogin(ctx context.Context, id string) error
	RecordSuccessfulLogin(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id, newPassword, confirm string) error
}

// Service authenticates callers and issues token pairs.
type Service struct {
	accounts Accounts
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	mail     email.Sender
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(accounts Accounts, hasher *security.Hasher, tokens *security.TokenProvider, mail email.Sender) *Service {
	return &Service{accounts: accounts, hasher: hasher, tokens: tokens, mail: mail, now: time.Now}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

// Login verifies credentials and account eligibility, records the attempt, and
// issues a token pair. Unknown identifiers and wrong passwords produce the same
// bad-credentials error.
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error) {
	u, err := s.accounts.FindForLogin(ctx, identifier)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, apperr.Unauthenticated("invalid username or password")
	}

	now := s.now().UTC()
	if !u.IsAccountNonLocked(now) {
		return nil, nil, apperr.Unauthenticated("account is locked")
	}
	if !u.Enabled {
		return nil, nil, apperr.Unauthenticated("account is disabled")
	}

	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		if rerr := s.accounts.RecordFailedLogin(ctx, u.ID); rerr != nil {
			return nil, nil, rerr
		}
		return nil, nil, apperr.Unauthenticated("invalid username or password")
	}

	if u.Status != domain.StatusActive {
		return nil, nil, apperr.Unauthenticated("account is not active")
	}

	if err := s.accounts.RecordSuccessfulLogin(ctx, u.ID); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh validates a refresh token, re-checks the account, and rotates the pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, nil, apperr.Unauthenticated("invalid refresh token")
	}
	u, err := s.accounts.Get(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, nil, apperr.Unauthenticated("invalid refresh token")
		}
		return nil, nil, err
	}
	if !u.IsSignInEligible(s.now().UTC()) {
		return nil, nil, apperr.Unauthenticated("account is not eligible to sign in")
	}
	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Register creates an account through the user service.
func (s *Service) Register(ctx context.Context, in userservice.RegisterInput) (*domain.User, error) {
	return s.accounts.Register(ctx, in)
}

// RequestPasswordReset emails a short-lived reset token to the account matching
// the identifier. Unknown identifiers succeed silently so the endpoint does not
// reveal which accounts exist.
func (s *Service) RequestPasswordReset(ctx context.Context, identifier string) error {
	u, err := s.accounts.FindForLogin(ctx, identifier)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	token, _, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return apperr.Internal("issuing reset token", err)
	}
	if err := s.mail.SendPasswordResetEmail(ctx, u.Email, token); err != nil {
		return apperr.Internal("sending reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	userID, err := s.tokens.ValidateReset(token)
	if err != nil {
		return apperr.Unauthenticated("invalid or expired reset token")
	}
	return s.accounts.ResetPassword(ctx, userID, newPassword, confirm)
}

func (s *Service) issuePair(u *domain.User) (*TokenPair, error) {
	access, expiresAt, err := s.tokens.IssueAccess(u.ID, rbac.Strings(u.Roles))
	if err != nil {
		return nil, apperr.Internal("issuing access token", err)
	}
	refresh, _, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, apperr.Internal("issuing refresh token", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}
