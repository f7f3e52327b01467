// Package stream tracks live duplex connections and fans alert payloads out to
// the subset of them associated with a target city.
package stream

import (
	"strings"
	"sync"

	"stormwatch.io/internal/ids"
)

// sendBuffer bounds the per-connection outbound queue. A full queue drops the
// payload instead of blocking the dispatcher.
const sendBuffer = 16

// Identity is attached to a connection by the identify handshake.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// CityResolver returns the user's currently selected city. Called at dispatch
// time, never cached on the connection, so targeting reflects the most recent
// selection even when it changed after connecting.
type CityResolver func(userID string) (string, bool)

// Handle represents one live connection for its whole lifetime. The transport
// writer drains Outbound; everything else goes through the registry.
type Handle struct {
	id   string
	out  chan []byte
	done chan struct{}

	mu       sync.RWMutex
	identity *Identity
}

// ID returns the connection identifier.
func (h *Handle) ID() string { return h.id }

// Identity returns the attached identity, if the identify handshake happened.
func (h *Handle) Identity() (Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.identity == nil {
		return Identity{}, false
	}
	return *h.identity, true
}

// Outbound is the channel the connection's writer drains.
func (h *Handle) Outbound() <-chan []byte { return h.out }

// Done is closed when the connection is torn down.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Send queues a payload for delivery. It never blocks: a torn-down connection
// or a full queue drops the payload and returns false.
func (h *Handle) Send(payload []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.out <- payload:
		return true
	case <-h.done:
		return false
	default:
		return false
	}
}

// Registry owns the set of live connections. Connect, identify and disconnect
// run from independent connection lifecycles concurrently with dispatch
// iteration; all mutation is guarded by the registry lock and iteration works
// on a snapshot.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]*Handle
	resolve CityResolver
}

// NewRegistry builds an empty registry around a city resolver.
func NewRegistry(resolve CityResolver) *Registry {
	return &Registry{
		conns:   make(map[string]*Handle),
		resolve: resolve,
	}
}

// Connect registers a new anonymous connection and returns its handle.
func (r *Registry) Connect() *Handle {
	h := &Handle{
		id:   ids.New(),
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	r.mu.Lock()
	r.conns[h.id] = h
	r.mu.Unlock()
	return h
}

// Identify attaches an identity to a handle. Re-identifying overwrites the
// previous identity; last write wins.
func (r *Registry) Identify(h *Handle, identity Identity) {
	if h == nil || strings.TrimSpace(identity.UserID) == "" {
		return
	}
	h.mu.Lock()
	h.identity = &identity
	h.mu.Unlock()
}

// Disconnect removes the handle and closes its done channel. Called exactly
// once from the connection's close/error path; a dispatch already holding a
// snapshot observes the closed done channel instead of a dangling entry.
func (r *Registry) Disconnect(h *Handle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	_, present := r.conns[h.id]
	delete(r.conns, h.id)
	r.mu.Unlock()
	if present {
		close(h.done)
	}
}

// ResolveCityFor looks up the city for a handle's user at call time.
func (r *Registry) ResolveCityFor(h *Handle) (string, bool) {
	identity, ok := h.Identity()
	if !ok || r.resolve == nil {
		return "", false
	}
	return r.resolve(identity.UserID)
}

// ForEachMatchingCity invokes fn for every currently-open, identified
// connection whose resolved city equals cityName case-insensitively.
// Connections without identity or without a stored city are skipped.
func (r *Registry) ForEachMatchingCity(cityName string, fn func(*Handle)) {
	r.mu.RLock()
	snapshot := make([]*Handle, 0, len(r.conns))
	for _, h := range r.conns {
		snapshot = append(snapshot, h)
	}
	r.mu.RUnlock()

	for _, h := range snapshot {
		select {
		case <-h.done:
			continue
		default:
		}
		city, ok := r.ResolveCityFor(h)
		if !ok {
			continue
		}
		if strings.EqualFold(city, cityName) {
			fn(h)
		}
	}
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
