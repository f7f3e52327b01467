package store

import (
	"context"
	"errors"
	"testing"
)

func TestSeededDemoUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u, err := m.FindByEmail(ctx, "demo@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != "1" || u.Name != "Demo User" {
		t.Fatalf("unexpected demo user: %+v", u)
	}

	if _, err := m.VerifyPassword(ctx, "demo@example.com", "password123"); err != nil {
		t.Fatalf("VerifyPassword with correct password: %v", err)
	}
	if _, err := m.VerifyPassword(ctx, "demo@example.com", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong password, got %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u, err := m.CreateUser(ctx, "New@Example.com", "secret", "New User")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
	if u.Email != "new@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}

	if _, err := m.CreateUser(ctx, "new@example.com", "other", "Dup"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	found, err := m.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Email != u.Email {
		t.Fatalf("FindByID returned %+v", found)
	}
}

func TestCityOverwrite(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CityFor(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any selection, got %v", err)
	}

	if err := m.SetCity(ctx, "1", City{CityName: "Paris", Latitude: 48.85, Longitude: 2.35}); err != nil {
		t.Fatalf("SetCity: %v", err)
	}
	if err := m.SetCity(ctx, "1", City{CityName: "Berlin", Latitude: 52.52, Longitude: 13.4}); err != nil {
		t.Fatalf("SetCity overwrite: %v", err)
	}

	city, err := m.CityFor(ctx, "1")
	if err != nil {
		t.Fatalf("CityFor: %v", err)
	}
	if city.CityName != "Berlin" {
		t.Fatalf("expected last write to win, got %s", city.CityName)
	}
}
