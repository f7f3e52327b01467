// Package session tracks which refresh tokens are currently honored. A
// refresh token must both verify cryptographically and be present here; a
// revoked token becomes unusable immediately even while its signature and
// expiry are still valid.
package session

import "sync"

// Manager owns the revocable set of active refresh tokens. The set is
// process-wide and volatile: a restart clears every session, which matches the
// stateless-token design.
type Manager struct {
	mu     sync.RWMutex
	active map[string]struct{}
}

// NewManager returns an empty session set.
func NewManager() *Manager {
	return &Manager{active: make(map[string]struct{})}
}

// RegisterRefreshToken adds a token to the active set.
func (m *Manager) RegisterRefreshToken(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	m.active[token] = struct{}{}
	m.mu.Unlock()
}

// IsActive reports set membership.
func (m *Manager) IsActive(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[token]
	return ok
}

// Revoke removes a token from the set. Revoking an absent token is not an
// error.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.active, token)
	m.mu.Unlock()
}

// Len reports the number of active refresh tokens.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}
