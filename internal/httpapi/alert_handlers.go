package httpapi

import (
	"errors"
	"net/http"

	"stormwatch.io/internal/alert"
)

type alertRequest struct {
	CityName      string `json:"cityName"`
	AlertSeverity string `json:"alertSeverity"`
	AlertMessage  string `json:"alertMessage"`
}

func (a *API) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req alertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AlertSeverity == "" {
		req.AlertSeverity = string(alert.DefaultSeverity)
	}

	if err := a.dispatcher.Dispatch(req.CityName, req.AlertSeverity, req.AlertMessage); err != nil {
		switch {
		case errors.Is(err, alert.ErrMissingField):
			// Historical quirk kept for client compatibility: missing fields
			// answer 401, not 400.
			writeError(w, http.StatusUnauthorized, missingFieldMessage(req))
		case errors.Is(err, alert.ErrInvalidSeverity):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Invalid alertSeverity",
				"allowed": alert.AllowedSeverities(),
			})
		default:
			writeError(w, http.StatusInternalServerError, "alert dispatch failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cityName": req.CityName})
}

func missingFieldMessage(req alertRequest) string {
	if req.CityName == "" {
		return "No city name provided"
	}
	return "No alert message provided"
}
