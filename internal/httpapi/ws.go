package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stormwatch.io/internal/obs"
	"stormwatch.io/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Demo service: accept connections from any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebsocket runs the realtime channel. Each connection gets a registry
// handle for its lifetime; a single writer goroutine drains the handle's
// outbound queue so dispatches from other goroutines never write to the
// socket directly.
func (a *API) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h := a.registry.Connect()
	obs.ConnectionOpened()
	log.Info().Str("connection", h.ID()).Msg("client connected")

	go writePump(conn, h)

	h.Send(stream.Encode(stream.NewWelcome()))

	defer func() {
		a.registry.Disconnect(h)
		obs.ConnectionClosed()
		_ = conn.Close()
		if identity, ok := h.Identity(); ok {
			log.Info().Str("connection", h.ID()).Str("userId", identity.UserID).Msg("client disconnected")
		} else {
			log.Info().Str("connection", h.ID()).Msg("client disconnected")
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if msg, ok := stream.DecodeIdentify(raw); ok {
			identity := stream.Identity{UserID: msg.UserID, Name: msg.Name, Email: msg.Email}
			a.registry.Identify(h, identity)
			log.Info().Str("connection", h.ID()).Str("userId", msg.UserID).Msg("client identified")
			h.Send(stream.Encode(stream.NewIdentified(identity)))
			continue
		}

		// Anything else echoes back.
		h.Send(stream.Encode(stream.NewEcho(raw)))
	}
}

// writePump owns all writes to the socket. It exits when the handle is torn
// down or the peer goes away.
func writePump(conn *websocket.Conn, h *stream.Handle) {
	for {
		select {
		case payload := <-h.Outbound():
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-h.Done():
			return
		}
	}
}
