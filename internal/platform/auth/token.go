package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dentix/dentix/internal/platform/apperr"
)

// DefaultTokenTTL is the validity window of issued credentials.
const DefaultTokenTTL = 2 * time.Hour

// Claims is the credential payload. Unknown members are ignored on decode.
type Claims struct {
	jwt.RegisteredClaims
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	TenantID string   `json:"tenant_id"`
}

// Subject identifies who a credential is issued to.
type Subject struct {
	ID       string
	Email    string
	Roles    []string
	TenantID string
}

// TokenService issues, verifies and revokes HS256 credentials.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	store  RevocationStore
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the clock used for iat/exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService returns a service signing with secret. A zero ttl falls
// back to DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration, store RevocationStore, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: secret, ttl: ttl, store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the validity window of issued credentials.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a credential for sub valid for the configured TTL.
func (s *TokenService) Issue(sub Subject) (string, *Claims, error) {
	if sub.ID == "" {
		return "", nil, fmt.Errorf("issue token: subject id is required")
	}
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.New().String(),
		},
		Email:    sub.Email,
		Roles:    sub.Roles,
		TenantID: sub.TenantID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func (s *TokenService) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}, opts...)

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Verify checks signature, algorithm, expiry and revocation. Every failure
// is Unauthenticated except a revocation store outage, which is Internal.
func (s *TokenService) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("missing token")
	}
	claims, err := s.parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("invalid token")
	}

	revoked, err := s.store.IsRevoked(ctx, token)
	if err != nil {
		return nil, apperr.Internal("check token revocation", err)
	}
	if revoked {
		return nil, apperr.Unauthenticated("token revoked")
	}
	return claims, nil
}

// Revoke adds token to the revocation set. Revoking twice is a no-op and an
// already expired token needs no entry. Only tokens signed by this service
// are accepted so the set cannot be filled with arbitrary strings.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Unauthenticated("missing token")
	}
	claims, err := s.parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return apperr.Unauthenticated("invalid token")
	}
	if err := s.store.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return apperr.Internal("revoke token", err)
	}
	return nil
}
