package security

import (
	"testing"
	"time"
)

func newTestProvider() *TokenProvider {
	return NewTokenProvider([]byte("test-secret"), "test-iss", "test-aud", 15*time.Minute, 168*time.Hour)
}

func TestTokenProvider_IssueAccessAndRefresh(t *testing.T) {
	p := newTestProvider()

	access, exp, err := p.IssueAccess("u1", []string{"USER", "ADMIN"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" {
		t.Fatal("access token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	userID, roles, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}
	if len(roles) != 2 || roles[0] != "USER" || roles[1] != "ADMIN" {
		t.Errorf("roles = %v, want [USER ADMIN]", roles)
	}

	refresh, refreshExp, err := p.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if refreshExp.Before(exp) {
		t.Error("refresh should outlive access")
	}
	uid, err := p.ValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if uid != "u1" {
		t.Errorf("ValidateRefresh userID = %q, want u1", uid)
	}
}

func TestTokenProvider_RejectsWrongUse(t *testing.T) {
	p := newTestProvider()

	access, _, err := p.IssueAccess("u1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := p.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := p.ValidateRefresh(access); err != ErrInvalidToken {
		t.Errorf("ValidateRefresh(access): want ErrInvalidToken, got %v", err)
	}
	if _, _, err := p.ValidateAccess(refresh); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(refresh): want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RejectsMalformed(t *testing.T) {
	p := newTestProvider()
	if _, _, err := p.ValidateAccess("invalid-token"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RejectsWrongSecret(t *testing.T) {
	p := newTestProvider()
	other := NewTokenProvider([]byte("other-secret"), "test-iss", "test-aud", 15*time.Minute, 168*time.Hour)

	access, _, err := p.IssueAccess("u1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("ValidateAccess with wrong secret: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RejectsWrongIssuer(t *testing.T) {
	p := newTestProvider()
	other := NewTokenProvider([]byte("test-secret"), "other-iss", "test-aud", 15*time.Minute, 168*time.Hour)

	access, _, err := other.IssueAccess("u1", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := p.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("ValidateAccess with wrong issuer: want ErrInvalidToken, got %v", err)
	}
}
