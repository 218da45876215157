package provider

import (
	"context"
	"errors"
)

// Provider is the mail transport a notification is handed to.
type Provider interface {
	// Send delivers a single message synchronously. A nil error means the
	// transport accepted the message, not that it reached the inbox.
	Send(ctx context.Context, msg *Message) error
	// GetName returns the provider's identifier (e.g., "smtp", "stdout").
	GetName() string
	// HealthCheck verifies the provider is reachable and functional.
	HealthCheck(ctx context.Context) error
}

// Message is a plain-text email.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Text    string
}

// ErrUnsupportedType is returned by NewProvider for unknown transport types.
var ErrUnsupportedType = errors.New("unsupported provider type")
