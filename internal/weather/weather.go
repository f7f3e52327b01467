// Package weather proxies the third-party geocoding API for city autocomplete
// and serves the demo current-weather lookup for a user's saved city.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stormwatch.io/internal/store"
)

const defaultSearchCount = 10

// CurrentWeather is the demo weather record for a user's saved city.
type CurrentWeather struct {
	City        string `json:"city"`
	Temperature int    `json:"temperature"`
	Condition   string `json:"condition"`
}

// Service wraps the geocoding upstream and the city store.
type Service struct {
	client       *http.Client
	geocodingURL string
	cities       store.CityStore
}

// NewService builds a weather service. timeout bounds every upstream call.
func NewService(cities store.CityStore, geocodingURL string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		client:       &http.Client{Timeout: timeout},
		geocodingURL: geocodingURL,
		cities:       cities,
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// SearchCities queries the geocoding API and maps results to city records. An
// empty result set is not an error.
func (s *Service) SearchCities(ctx context.Context, query string, count int) ([]store.City, error) {
	if query == "" {
		return nil, errors.New("weather: query is required")
	}
	if count <= 0 {
		count = defaultSearchCount
	}

	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("language", "en")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.geocodingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: geocoding status %d", resp.StatusCode)
	}

	var decoded geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("weather: decode geocoding response: %w", err)
	}

	cities := make([]store.City, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		cities = append(cities, store.City{
			CityName:  r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return cities, nil
}

// CurrentWeather returns the demo weather record for the user's saved city.
// Users without a selection get the "Unknown" city rather than an error.
func (s *Service) CurrentWeather(ctx context.Context, userID string) CurrentWeather {
	cityName := "Unknown"
	if city, err := s.cities.CityFor(ctx, userID); err == nil {
		cityName = city.CityName
	}
	return CurrentWeather{
		City:        cityName,
		Temperature: 15,
		Condition:   "Cloudy",
	}
}
