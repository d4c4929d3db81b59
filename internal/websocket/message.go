package websocket

import (
	"encoding/json"
	"time"
)

// Message types exchanged with the browser
const (
	TypeConnection   = "connection"
	TypeHeartbeat    = "heartbeat"
	TypeError        = "error"
	TypeNotification = "notification"
	TypeSearchInput  = "search:input"
	TypeSearchSubmit = "search:submit"
)

// Inbound is a message received from a browser
type Inbound struct {
	Type  string `json:"type"`
	Scope string `json:"scope,omitempty"`
	Query string `json:"query,omitempty"`
}

// ParseInbound decodes a client message
func ParseInbound(data []byte) (Inbound, error) {
	var in Inbound
	err := json.Unmarshal(data, &in)
	return in, err
}

// Notification toggles a notification element in every open page
type Notification struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
}

// SearchSubmit tells one client to load the filtered list page
type SearchSubmit struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Query string `json:"query"`
	URL   string `json:"url"`
}

// envelope carries server status messages
type envelope struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp string         `json:"timestamp"`
}

func newEnvelope(msgType string, data map[string]any) envelope {
	return envelope{Type: msgType, Data: data, Timestamp: time.Now().Format(time.RFC3339)}
}
