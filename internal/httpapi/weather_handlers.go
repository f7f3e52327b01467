package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"stormwatch.io/internal/auth"
	"stormwatch.io/internal/store"
)

type setCityRequest struct {
	CityName  string  `json:"cityName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (a *API) handleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, a.weather.CurrentWeather(r.Context(), user.ID))
}

func (a *API) handleCitiesAutocomplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			count = v
		}
	}

	cities, err := a.weather.SearchCities(r.Context(), query, count)
	if err != nil {
		// Autocomplete degrades to an empty list rather than failing the
		// request.
		log.Warn().Err(err).Str("query", query).Msg("geocoding lookup failed")
		writeJSON(w, http.StatusOK, []store.City{})
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (a *API) handleUserCity(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getUserCity(w, r)
	case http.MethodPost:
		a.setUserCity(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (a *API) getUserCity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	city, err := a.cities.CityFor(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No city set for user")
			return
		}
		writeError(w, http.StatusInternalServerError, "city lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (a *API) setUserCity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req setCityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.CityName) == "" {
		writeError(w, http.StatusBadRequest, "City is required")
		return
	}

	if err := a.cities.SetCity(r.Context(), user.ID, store.City{
		CityName:  req.CityName,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "city update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cityName": req.CityName})
}
