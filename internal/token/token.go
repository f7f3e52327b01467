// Package token issues and verifies the signed identity tokens used for API
// access and session refresh. Tokens are stateless: validity is determined by
// signature and expiry alone. Refresh-token revocation lives in the session
// package, not here.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind tags a token as access or refresh. Every decode re-checks the tag so
// a refresh token can never authorize an API call and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrMalformed        = errors.New("token: malformed token")
	ErrExpired          = errors.New("token: token expired")
	ErrInvalidSignature = errors.New("token: invalid signature")
)

// Claims is the signed claim set embedded in every token.
type Claims struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Kind returns the token type tag.
func (c *Claims) Kind() Kind { return Kind(c.Type) }

// Extra carries optional identity claims embedded in access tokens.
type Extra struct {
	Email string
	Name  string
}

// Service signs and verifies tokens with a process-wide HS256 secret. Rotating
// the secret invalidates all outstanding tokens; that is accepted operational
// behavior.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service. The secret is loaded once at startup.
func NewService(secret string, opts ...Option) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token: signing secret is required")
	}
	s := &Service{
		secret:     []byte(secret),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL reports the configured lifetime for a token kind.
func (s *Service) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

// Issue produces a signed token string for the given user. Access tokens carry
// the optional email/name claims; refresh tokens carry only the identity.
func (s *Service) Issue(kind Kind, userID string, extra Extra) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("token: userID is required")
	}
	if kind != KindAccess && kind != KindRefresh {
		return "", errors.New("token: unknown token kind")
	}

	now := s.now().UTC()
	claims := Claims{
		UserID: userID,
		Type:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL(kind))),
		},
	}
	if kind == KindAccess {
		claims.Email = extra.Email
		claims.Name = extra.Name
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claim set. It consults no
// store; callers that need revocation semantics go through the session set.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMalformed
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrMalformed
	}
	if claims.Type != string(KindAccess) && claims.Type != string(KindRefresh) {
		return nil, ErrMalformed
	}
	return claims, nil
}

// ExpirationOf decodes a token without verifying its signature and returns the
// expiry timestamp. Used only to schedule client-side refresh timers; never
// for trust decisions.
func (s *Service) ExpirationOf(tokenString string) (time.Time, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims)
	if err != nil {
		return time.Time{}, ErrMalformed
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrMalformed
	}
	return claims.ExpiresAt.Time, nil
}
