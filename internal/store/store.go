// Package store holds the demo user table and per-user city selections. Both
// are volatile in-memory structures that disappear on restart.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrEmailTaken = errors.New("store: email already registered")
)

// User is the public identity record. The password never leaves the store;
// credential checks go through VerifyPassword so a hashing implementation can
// substitute without touching callers.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// City is a user's selected city with resolved coordinates. One per user,
// overwritten on each selection.
type City struct {
	CityName  string  `json:"cityName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UserStore manages identity records and credential checks.
type UserStore interface {
	CreateUser(ctx context.Context, email, password, name string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	VerifyPassword(ctx context.Context, email, password string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

// CityStore manages per-user city selections.
type CityStore interface {
	CityFor(ctx context.Context, userID string) (*City, error)
	SetCity(ctx context.Context, userID string, city City) error
}
