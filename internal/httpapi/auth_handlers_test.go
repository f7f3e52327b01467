package httpapi

import (
	"net/http"
	"testing"
)

func TestLoginIssuesTokensAndCookie(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.post("/api/auth/login", map[string]string{
		"email":    "demo@example.com",
		"password": "password123",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}

	var refreshCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatalf("no refresh cookie set")
	}
	if !refreshCookie.HttpOnly {
		t.Fatalf("refresh cookie must be http-only")
	}
	if refreshCookie.Path != "/api/auth" {
		t.Fatalf("unexpected cookie path: %q", refreshCookie.Path)
	}

	payload := decode[authResponse](t, resp)
	if payload.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	if payload.TokenExpiration == 0 {
		t.Fatalf("missing token expiration")
	}
	user, ok := payload.User.(map[string]any)
	if !ok {
		t.Fatalf("unexpected user payload: %v", payload.User)
	}
	if user["id"] != "1" || user["email"] != "demo@example.com" {
		t.Fatalf("unexpected user: %v", user)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.post("/api/auth/login", map[string]string{
		"email":    "demo@example.com",
		"password": "wrong",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status: %d", resp.StatusCode)
	}

	resp = api.post("/api/auth/login", map[string]string{
		"email": "demo@example.com",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing password status: %d", resp.StatusCode)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.post("/api/auth/register", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "secret",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	payload := decode[authResponse](t, resp)

	resp = api.get("/api/auth/me", nil, bearerHeader(payload.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status: %d", resp.StatusCode)
	}
	me := decode[map[string]map[string]any](t, resp)
	if me["user"]["email"] != "new@example.com" {
		t.Fatalf("unexpected me payload: %v", me)
	}

	// Same email again conflicts.
	resp = api.post("/api/auth/register", map[string]string{
		"name":     "Another",
		"email":    "new@example.com",
		"password": "secret",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status: %d", resp.StatusCode)
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.post("/api/auth/register", map[string]string{
		"email":    "partial@example.com",
		"password": "secret",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing name status: %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "Email, password, and name are required" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestRefreshRotatesAccessToken(t *testing.T) {
	api := newTestAPI(t, nil)
	first := api.login("demo@example.com", "password123")

	// Cookie jar replays the refresh cookie.
	resp := api.get("/api/auth/refresh", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: %d", resp.StatusCode)
	}
	second := decode[authResponse](t, resp)
	if second.AccessToken == "" {
		t.Fatalf("refresh returned no access token")
	}

	// Both access tokens stay valid until they expire.
	for _, tok := range []string{first.AccessToken, second.AccessToken} {
		resp := api.get("/api/auth/me", nil, bearerHeader(tok))
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("me with rotated token status: %d", resp.StatusCode)
		}
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/api/auth/refresh", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh without cookie status: %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "No refresh token" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	api := newTestAPI(t, nil)
	payload := api.login("demo@example.com", "password123")

	// Keep a copy of the refresh token before the jar drops it on logout.
	refreshResp := api.get("/api/auth/refresh", nil, nil)
	refreshResp.Body.Close()
	var refreshToken string
	for _, c := range refreshResp.Cookies() {
		if c.Name == "refresh_token" {
			refreshToken = c.Value
		}
	}
	if refreshToken == "" {
		t.Fatalf("no refresh token captured")
	}

	resp := api.post("/api/auth/logout", nil, bearerHeader(payload.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status: %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] != "Logged out" {
		t.Fatalf("unexpected logout body: %v", body)
	}

	// The revoked token is rejected even when replayed by hand.
	req, err := http.NewRequest(http.MethodGet, api.baseURL+"/api/auth/refresh", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})
	replay, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("replay refresh: %v", err)
	}
	defer replay.Body.Close()
	if replay.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replayed refresh status: %d", replay.StatusCode)
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/api/auth/me", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status: %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "No token provided" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}

	resp = api.get("/api/auth/me", nil, bearerHeader("not-a-jwt"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token status: %d", resp.StatusCode)
	}
	body = decode[map[string]string](t, resp)
	if body["error"] != "Invalid token" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestRefreshTokenRejectedAsBearer(t *testing.T) {
	api := newTestAPI(t, nil)
	api.login("demo@example.com", "password123")

	resp := api.get("/api/auth/refresh", nil, nil)
	resp.Body.Close()
	var refreshToken string
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refreshToken = c.Value
		}
	}
	if refreshToken == "" {
		t.Fatalf("no refresh token captured")
	}

	resp = api.get("/api/auth/me", nil, bearerHeader(refreshToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh token as bearer status: %d", resp.StatusCode)
	}
}
