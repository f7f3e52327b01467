// Package auth orchestrates login, registration, token refresh and logout over
// the token service, session set and user store.
package auth

import (
	"context"
	"errors"
	"time"

	"stormwatch.io/internal/session"
	"stormwatch.io/internal/store"
	"stormwatch.io/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrUnauthorized       = errors.New("auth: unauthorized")
)

// Session is the result of a successful login, registration or refresh.
type Session struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
	User            *store.User
}

// Flow owns the credential-to-token state machine. It never exposes which
// verification step failed; callers see a single unauthorized outcome.
type Flow struct {
	tokens   *token.Service
	sessions *session.Manager
	users    store.UserStore
}

// NewFlow wires the auth flow.
func NewFlow(tokens *token.Service, sessions *session.Manager, users store.UserStore) *Flow {
	return &Flow{tokens: tokens, sessions: sessions, users: users}
}

// Login checks credentials and issues a fresh token pair.
func (f *Flow) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := f.users.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return f.issueSession(user)
}

// Register creates the user and performs the same token issuance as login.
func (f *Flow) Register(ctx context.Context, name, email, password string) (*Session, error) {
	user, err := f.users.CreateUser(ctx, email, password, name)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return f.issueSession(user)
}

// Refresh validates a refresh token and issues a new pair. The presented
// token must verify, carry the refresh type tag, and still be in the active
// set. The old token is intentionally not revoked here: concurrent sessions
// from the same refresh lineage stay valid.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}
	claims, err := f.tokens.Verify(refreshToken)
	if err != nil || claims.Kind() != token.KindRefresh {
		return nil, ErrUnauthorized
	}
	if !f.sessions.IsActive(refreshToken) {
		return nil, ErrUnauthorized
	}
	user, err := f.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return f.issueSession(user)
}

// Logout revokes the refresh token. Always succeeds, even for tokens that were
// never registered or are already invalid.
func (f *Flow) Logout(refreshToken string) {
	if refreshToken == "" {
		return
	}
	f.sessions.Revoke(refreshToken)
}

// Authenticate validates an access token and resolves its user. Wrong-type
// tokens, verification failures and vanished users all collapse to
// ErrUnauthorized.
func (f *Flow) Authenticate(ctx context.Context, accessToken string) (*store.User, error) {
	claims, err := f.tokens.Verify(accessToken)
	if err != nil || claims.Kind() != token.KindAccess {
		return nil, ErrUnauthorized
	}
	user, err := f.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (f *Flow) issueSession(user *store.User) (*Session, error) {
	access, err := f.tokens.Issue(token.KindAccess, user.ID, token.Extra{
		Email: user.Email,
		Name:  user.Name,
	})
	if err != nil {
		return nil, err
	}
	refresh, err := f.tokens.Issue(token.KindRefresh, user.ID, token.Extra{})
	if err != nil {
		return nil, err
	}
	f.sessions.RegisterRefreshToken(refresh)

	expiresAt, err := f.tokens.ExpirationOf(access)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: expiresAt,
		User:            user,
	}, nil
}

// RefreshTTL reports the configured refresh token lifetime, used for cookie
// max-age.
func (f *Flow) RefreshTTL() time.Duration {
	return f.tokens.TTL(token.KindRefresh)
}
