package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type userRecord struct {
	user     User
	password string
}

// Memory is the demo implementation of UserStore and CityStore. Passwords are
// stored and compared in plaintext; this is a known demo shortcut, which is
// why credential checks sit behind the VerifyPassword capability.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]*userRecord
	cities  map[string]City
}

// NewMemory returns a store seeded with the two demo accounts.
func NewMemory() *Memory {
	m := &Memory{
		byEmail: make(map[string]*userRecord),
		cities:  make(map[string]City),
	}
	m.byEmail["demo@example.com"] = &userRecord{
		user:     User{ID: "1", Email: "demo@example.com", Name: "Demo User"},
		password: "password123",
	}
	m.byEmail["demo2@example.com"] = &userRecord{
		user:     User{ID: "2", Email: "demo2@example.com", Name: "Second Demo User"},
		password: "password321",
	}
	return m
}

func (m *Memory) CreateUser(_ context.Context, email, password, name string) (*User, error) {
	email = normalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[email]; exists {
		return nil, ErrEmailTaken
	}
	rec := &userRecord{
		user:     User{ID: uuid.NewString(), Email: email, Name: name},
		password: password,
	}
	m.byEmail[email] = rec
	u := rec.user
	return &u, nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := rec.user
	return &u, nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.byEmail {
		if rec.user.ID == id {
			u := rec.user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) VerifyPassword(_ context.Context, email, password string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byEmail[normalizeEmail(email)]
	if !ok || rec.password != password {
		return nil, ErrNotFound
	}
	u := rec.user
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*User, 0, len(m.byEmail))
	for _, rec := range m.byEmail {
		u := rec.user
		out = append(out, &u)
	}
	return out, nil
}

func (m *Memory) CityFor(_ context.Context, userID string) (*City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	city, ok := m.cities[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &city, nil
}

func (m *Memory) SetCity(_ context.Context, userID string, city City) error {
	m.mu.Lock()
	m.cities[userID] = city
	m.mu.Unlock()
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
