package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	TypeUserRegistered      = "user.registered"
	TypeUserLoggedIn        = "user.logged_in"
	TypeUserOAuthLinked     = "user.oauth_linked"
	TypeUserPasswordChanged = "user.password_changed"
)

// Event describe un cambio relevante en una cuenta.
type Event struct {
	Type       string            `json:"type"`
	UserID     string            `json:"user_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func New(eventType, userID string, attributes map[string]string) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Attributes: attributes,
	}
}

// Publisher entrega eventos de cuenta a un broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

func Encode(event Event) ([]byte, error) {
	return json.Marshal(event)
}

type disabledPublisher struct{}

// NewDisabledPublisher descarta los eventos. Se usa cuando no hay broker configurado.
func NewDisabledPublisher() Publisher {
	return disabledPublisher{}
}

func (disabledPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}

func (disabledPublisher) Close() error {
	return nil
}
