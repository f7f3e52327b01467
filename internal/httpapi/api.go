// Package httpapi is the HTTP layer: route table, middleware chain, auth
// endpoints, weather/user-city endpoints, alert ingress and the websocket
// endpoint.
package httpapi

import (
	"net/http"

	"stormwatch.io/internal/alert"
	"stormwatch.io/internal/auth"
	"stormwatch.io/internal/config"
	"stormwatch.io/internal/obs"
	"stormwatch.io/internal/store"
	"stormwatch.io/internal/stream"
	"stormwatch.io/internal/weather"
)

// API wires handlers to the services they orchestrate.
type API struct {
	mux        *http.ServeMux
	flow       *auth.Flow
	cities     store.CityStore
	weather    *weather.Service
	registry   *stream.Registry
	dispatcher *alert.Dispatcher

	version      string
	cookieName   string
	cookiePath   string
	cookieSecure bool
	corsOrigins  []string
	maxBodyBytes int64
	rateBurst    int
	ratePerSec   int
}

// New constructs the API and registers all routes.
func New(cfg *config.Config, flow *auth.Flow, cities store.CityStore, weatherSvc *weather.Service, registry *stream.Registry, dispatcher *alert.Dispatcher) *API {
	a := &API{
		mux:        http.NewServeMux(),
		flow:       flow,
		cities:     cities,
		weather:    weatherSvc,
		registry:   registry,
		dispatcher: dispatcher,

		version:      cfg.App.Version,
		cookieName:   cfg.Auth.CookieName,
		cookiePath:   cfg.Auth.CookiePath,
		cookieSecure: cfg.Auth.CookieSecure,
		corsOrigins:  cfg.Server.CORSOrigins,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		rateBurst:    cfg.Server.RateBurst,
		ratePerSec:   cfg.Server.RatePerSec,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth (public)
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/refresh", a.handleRefresh)

	// auth (protected)
	a.mux.HandleFunc("/api/auth/logout", a.requireAuth(a.handleLogout))
	a.mux.HandleFunc("/api/auth/me", a.requireAuth(a.handleMe))

	// weather & user city (protected)
	a.mux.HandleFunc("/api/weather", a.requireAuth(a.handleWeather))
	a.mux.HandleFunc("/api/weather/cities-autocomplete", a.requireAuth(a.handleCitiesAutocomplete))
	a.mux.HandleFunc("/api/user-city", a.requireAuth(a.handleUserCity))

	// alert ingress
	a.mux.HandleFunc("/api/alerts", a.handleAlerts)

	// realtime channel
	a.mux.HandleFunc("/ws", a.handleWebsocket)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = SecurityHeaders(h)
	h = CORS(h, a.corsOrigins)
	h = Logging(h)
	return obs.Instrument(h)
}
