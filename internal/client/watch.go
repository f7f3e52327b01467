package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stormwatch.io/internal/stream"
)

// Watcher holds one realtime connection and surfaces decoded alerts.
type Watcher struct {
	conn   *websocket.Conn
	alerts chan stream.Alert
}

// WatchAlerts opens the realtime channel, identifies as the session's user
// and delivers alerts until the connection or ctx ends.
func (c *Client) WatchAlerts(ctx context.Context, sess *Session) (*Watcher, error) {
	wsURL, err := websocketURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	user := sess.User()
	identify := stream.Identify{
		Type:   stream.TypeIdentify,
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}
	if err := conn.WriteJSON(identify); err != nil {
		conn.Close()
		return nil, err
	}

	w := &Watcher{
		conn:   conn,
		alerts: make(chan stream.Alert, 16),
	}
	go w.readLoop()
	return w, nil
}

// Alerts delivers decoded alert messages. The channel closes when the
// connection ends.
func (w *Watcher) Alerts() <-chan stream.Alert { return w.alerts }

// Close tears the connection down.
func (w *Watcher) Close() error { return w.conn.Close() }

func (w *Watcher) readLoop() {
	defer close(w.alerts)
	for {
		_, raw, err := w.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg stream.Alert
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type != stream.TypeAlert {
			// welcome/identified/echo traffic is logged, not surfaced.
			log.Debug().Str("payload", string(raw)).Msg("realtime message")
			continue
		}
		select {
		case w.alerts <- msg:
		default:
			// Slow consumer: drop rather than stall the read loop.
		}
	}
}

func websocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
