package httpapi

import (
	"net/http"
	"net/url"
	"testing"

	"stormwatch.io/internal/store"
)

func TestUserCityRoundTrip(t *testing.T) {
	api := newTestAPI(t, nil)
	payload := api.login("demo@example.com", "password123")
	authed := bearerHeader(payload.AccessToken)

	// Nothing saved yet.
	resp := api.get("/api/user-city", nil, authed)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unset city status: %d", resp.StatusCode)
	}

	resp = api.post("/api/user-city", map[string]any{
		"cityName":  "Berlin",
		"latitude":  52.52,
		"longitude": 13.405,
	}, authed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set city status: %d", resp.StatusCode)
	}
	set := decode[map[string]any](t, resp)
	if set["success"] != true || set["cityName"] != "Berlin" {
		t.Fatalf("unexpected set-city body: %v", set)
	}

	resp = api.get("/api/user-city", nil, authed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get city status: %d", resp.StatusCode)
	}
	city := decode[store.City](t, resp)
	if city.CityName != "Berlin" || city.Latitude != 52.52 {
		t.Fatalf("unexpected city: %+v", city)
	}
}

func TestSetUserCityRequiresName(t *testing.T) {
	api := newTestAPI(t, nil)
	payload := api.login("demo@example.com", "password123")

	resp := api.post("/api/user-city", map[string]any{
		"latitude": 1.0,
	}, bearerHeader(payload.AccessToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing city name status: %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "City is required" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestCurrentWeatherUsesSavedCity(t *testing.T) {
	api := newTestAPI(t, nil)
	payload := api.login("demo@example.com", "password123")
	authed := bearerHeader(payload.AccessToken)

	resp := api.get("/api/weather", nil, authed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("weather status: %d", resp.StatusCode)
	}
	report := decode[map[string]any](t, resp)
	if report["city"] != "Unknown" {
		t.Fatalf("expected placeholder city, got %v", report["city"])
	}

	resp = api.post("/api/user-city", map[string]any{"cityName": "Rome"}, authed)
	resp.Body.Close()

	resp = api.get("/api/weather", nil, authed)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("weather status: %d", resp.StatusCode)
	}
	report = decode[map[string]any](t, resp)
	if report["city"] != "Rome" {
		t.Fatalf("expected saved city, got %v", report["city"])
	}
	if report["temperature"] != float64(15) || report["condition"] != "Cloudy" {
		t.Fatalf("unexpected stub report: %v", report)
	}
}

func TestCitiesAutocomplete(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "ber" {
			t.Errorf("unexpected upstream query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"name":"Berlin","latitude":52.52,"longitude":13.405},
			{"name":"Bern","latitude":46.95,"longitude":7.45}
		]}`))
	})
	payload := api.login("demo@example.com", "password123")

	resp := api.get("/api/weather/cities-autocomplete", url.Values{"query": {"ber"}}, bearerHeader(payload.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("autocomplete status: %d", resp.StatusCode)
	}
	cities := decode[[]store.City](t, resp)
	if len(cities) != 2 || cities[0].CityName != "Berlin" {
		t.Fatalf("unexpected cities: %+v", cities)
	}
}

func TestCitiesAutocompleteRequiresQuery(t *testing.T) {
	api := newTestAPI(t, nil)
	payload := api.login("demo@example.com", "password123")

	resp := api.get("/api/weather/cities-autocomplete", nil, bearerHeader(payload.AccessToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing query status: %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "Query parameter is required" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestCitiesAutocompleteDegradesOnUpstreamFailure(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	payload := api.login("demo@example.com", "password123")

	resp := api.get("/api/weather/cities-autocomplete", url.Values{"query": {"ber"}}, bearerHeader(payload.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("degraded autocomplete status: %d", resp.StatusCode)
	}
	cities := decode[[]store.City](t, resp)
	if len(cities) != 0 {
		t.Fatalf("expected empty result, got %+v", cities)
	}
}
