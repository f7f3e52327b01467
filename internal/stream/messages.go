package stream

import (
	"encoding/json"
	"fmt"
)

// Message types exchanged over the realtime channel. Both ends dispatch on the
// type tag; anything that fails to parse as a known type falls through to the
// echo response.
const (
	TypeWelcome    = "welcome"
	TypeIdentify   = "identify"
	TypeIdentified = "identified"
	TypeEcho       = "echo"
	TypeAlert      = "alert"
)

// Welcome is sent once, immediately after a connection opens.
type Welcome struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Identify is the first message a client should send; it binds the connection
// to a user identity.
type Identify struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Identified acknowledges a successful identify handshake.
type Identified struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Echo is the fallback response for any unrecognized inbound payload.
type Echo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Alert is a server-initiated push to every connection in the target city.
type Alert struct {
	Type          string `json:"type"`
	CityName      string `json:"cityName"`
	AlertSeverity string `json:"alertSeverity"`
	AlertMessage  string `json:"alertMessage"`
}

// NewWelcome builds the connection greeting.
func NewWelcome() Welcome {
	return Welcome{Type: TypeWelcome, Message: "Webserver Connected!"}
}

// NewIdentified greets the identified user by name, falling back to the user
// id when no name was supplied.
func NewIdentified(identity Identity) Identified {
	who := identity.Name
	if who == "" {
		who = identity.UserID
	}
	if who == "" {
		who = "client"
	}
	return Identified{Type: TypeIdentified, Message: fmt.Sprintf("Welcome, %s", who)}
}

// NewEcho wraps a raw inbound payload in the echo response.
func NewEcho(raw []byte) Echo {
	return Echo{Type: TypeEcho, Message: fmt.Sprintf("Server received: %s", raw)}
}

// NewAlert builds the alert envelope delivered verbatim to every matching
// connection.
func NewAlert(cityName, severity, message string) Alert {
	return Alert{
		Type:          TypeAlert,
		CityName:      cityName,
		AlertSeverity: severity,
		AlertMessage:  message,
	}
}

// DecodeIdentify attempts to parse an inbound payload as an identify message.
// The second return is false for non-JSON payloads, other message types, and
// identify messages without a userId.
func DecodeIdentify(raw []byte) (Identify, bool) {
	var msg Identify
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Identify{}, false
	}
	if msg.Type != TypeIdentify || msg.UserID == "" {
		return Identify{}, false
	}
	return msg, true
}

// Encode marshals an outbound message. Marshal failures cannot happen for the
// fixed envelope shapes, so the payload is returned directly.
func Encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
