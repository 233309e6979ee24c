package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or has the
	// wrong use.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
	tokenUseReset   = "password_reset"

	resetTTL = 30 * time.Minute
)

// Claims holds JWT claims for access and refresh tokens. Roles is set on access
// tokens only so the HTTP middleware can authorize without a user lookup.
type Claims struct {
	jwt.RegisteredClaims
	Roles    []string `json:"roles,omitempty"`
	TokenUse string   `json:"token_use"`
}

// TokenProvider issues and validates HS256 JWT access and refresh tokens.
type TokenProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given shared secret.
// issuer and audience are set on claims and validated on parse.
func NewTokenProvider(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess issues a short-lived access JWT for the given user carrying its roles.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(userID string, roles []string) (string, time.Time, error) {
	return p.issue(userID, roles, tokenUseAccess, p.accessTTL)
}

// IssueRefresh issues a refresh JWT for the given user.
func (p *TokenProvider) IssueRefresh(userID string) (string, time.Time, error) {
	return p.issue(userID, nil, tokenUseRefresh, p.refreshTTL)
}

func (p *TokenProvider) issue(userID string, roles []string, use string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Roles:    roles,
		TokenUse: use,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueReset issues a short-lived single-purpose token for a password reset link.
func (p *TokenProvider) IssueReset(userID string) (string, time.Time, error) {
	return p.issue(userID, nil, tokenUseReset, resetTTL)
}

// ValidateReset parses a password-reset token and returns the user id.
func (p *TokenProvider) ValidateReset(token string) (userID string, err error) {
	claims, err := p.parse(token, tokenUseReset)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ValidateAccess parses an access token and returns the user id and roles.
func (p *TokenProvider) ValidateAccess(token string) (userID string, roles []string, err error) {
	claims, err := p.parse(token, tokenUseAccess)
	if err != nil {
		return "", nil, err
	}
	return claims.Subject, claims.Roles, nil
}

// ValidateRefresh parses a refresh token and returns the user id.
func (p *TokenProvider) ValidateRefresh(token string) (userID string, err error) {
	claims, err := p.parse(token, tokenUseRefresh)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (p *TokenProvider) parse(token, wantUse string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithAudience(p.audience))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != wantUse {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
