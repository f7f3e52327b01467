// Package client is a programmatic client for the stormwatch API: it logs in,
// keeps the access token fresh with a self-rescheduling refresh timer, and can
// watch the realtime channel for alerts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"stormwatch.io/internal/store"
)

// Client talks to one stormwatch server. The cookie jar carries the refresh
// cookie between calls the same way a browser would.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

type authPayload struct {
	AccessToken     string     `json:"access_token"`
	TokenExpiration int64      `json:"token_expiration"`
	User            store.User `json:"user"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Login authenticates and returns a session that refreshes itself until
// closed.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	payload, err := c.postAuth(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.newSession(payload), nil
}

// Register creates an account and returns a live session for it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	payload, err := c.postAuth(ctx, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.newSession(payload), nil
}

func (c *Client) postAuth(ctx context.Context, path string, body map[string]string) (*authPayload, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeAuthResponse(resp)
}

func (c *Client) refresh(ctx context.Context) (*authPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeAuthResponse(resp)
}

func decodeAuthResponse(resp *http.Response) (*authPayload, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var ep errorPayload
		if json.Unmarshal(raw, &ep) == nil && ep.Error != "" {
			return nil, fmt.Errorf("client: %s (status %d)", ep.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}
	var payload authPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("client: decode auth response: %w", err)
	}
	return &payload, nil
}

// SetCity selects the session user's city.
func (c *Client) SetCity(ctx context.Context, sess *Session, city store.City) error {
	data, err := json.Marshal(city)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user-city", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: set city status %d", resp.StatusCode)
	}
	return nil
}
