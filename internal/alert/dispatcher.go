package alert

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"stormwatch.io/internal/obs"
	"stormwatch.io/internal/stream"
)

// Dispatcher fans a validated alert out through the connection registry.
// Delivery is best-effort and fire-and-forget: a failed send to one connection
// never aborts delivery to the others and is not surfaced to the caller.
type Dispatcher struct {
	registry *stream.Registry
}

// NewDispatcher builds a dispatcher over the given registry.
func NewDispatcher(registry *stream.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch validates the alert and sends its envelope verbatim to every
// connection resolved to cityName. Validation failures return
// ErrMissingField or ErrInvalidSeverity; per-connection send failures are
// logged only.
func (d *Dispatcher) Dispatch(cityName, severity, message string) error {
	if cityName == "" {
		return fmt.Errorf("no city name provided: %w", ErrMissingField)
	}
	if message == "" {
		return fmt.Errorf("no alert message provided: %w", ErrMissingField)
	}
	sev, err := ParseSeverity(severity)
	if err != nil {
		return err
	}

	// Serialize once; every recipient gets the identical payload.
	payload := stream.Encode(stream.NewAlert(cityName, string(sev), message))
	obs.AlertDispatched(string(sev))

	delivered := 0
	d.registry.ForEachMatchingCity(cityName, func(h *stream.Handle) {
		if h.Send(payload) {
			obs.AlertDelivered()
			delivered++
			return
		}
		log.Warn().
			Str("connection", h.ID()).
			Str("city", cityName).
			Msg("alert dropped for connection")
	})

	log.Info().
		Str("city", cityName).
		Str("severity", string(sev)).
		Int("delivered", delivered).
		Msg("alert dispatched")
	return nil
}
