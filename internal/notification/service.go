// Package notification turns notification requests into mail transport calls.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sungwon/notification-service/internal/logger"
	"github.com/sungwon/notification-service/internal/metrics"
	"github.com/sungwon/notification-service/internal/provider"
)

// Service sends notifications as plain-text email from a fixed sender
// address. It holds no mutable state and is safe for concurrent use.
type Service struct {
	provider provider.Provider
	sender   string
	log      zerolog.Logger
}

// NewService creates a Service that delivers through p with sender as From.
func NewService(p provider.Provider, sender string, log zerolog.Logger) *Service {
	return &Service{
		provider: p,
		sender:   sender,
		log:      log,
	}
}

// SendNotification builds a message and hands it to the provider once.
// The fields are forwarded as given; any provider error is returned wrapped.
func (s *Service) SendNotification(ctx context.Context, to, subject, content string) error {
	msg := &provider.Message{
		ID:      uuid.NewString(),
		From:    s.sender,
		To:      to,
		Subject: subject,
		Text:    content,
	}

	log := s.log
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		log = log.With().Str("correlation_id", id).Logger()
	}

	name := s.provider.GetName()
	start := time.Now()
	err := s.provider.Send(ctx, msg)
	metrics.NotificationSendDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsSentTotal.WithLabelValues(name, metrics.ResultFailure).Inc()
		log.Error().Err(err).
			Str("provider", name).
			Str("message_id", msg.ID).
			Str("to", to).
			Msg("notification send failed")
		return fmt.Errorf("dispatch notification: %w", err)
	}

	metrics.NotificationsSentTotal.WithLabelValues(name, metrics.ResultSuccess).Inc()
	log.Info().
		Str("provider", name).
		Str("message_id", msg.ID).
		Str("to", to).
		Msg("notification sent")

	return nil
}
