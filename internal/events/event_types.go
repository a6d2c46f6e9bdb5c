package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionLogin     EventType = "session_login"
	EventSessionLogout    EventType = "session_logout"
	EventSessionExpired   EventType = "session_expired"
	EventNavigationDenied EventType = "navigation_denied"
	EventRootRedirected   EventType = "root_redirected"
)

// Event is a session lifecycle fact.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType, sessionID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
}

// LoginPayload describes a successful login.
type LoginPayload struct {
	Flow     string `json:"flow"`
	UserID   string `json:"user_id,omitempty"`
	Redirect string `json:"redirect"`
}

// DeniedPayload describes a refused navigation.
type DeniedPayload struct {
	Section string `json:"section"`
	Reason  string `json:"reason"`
}
