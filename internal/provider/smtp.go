package provider

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTP delivers messages through an SMTP relay. A new connection is dialed
// for every message, so an SMTP value is safe for concurrent use.
type SMTP struct {
	dialer *gomail.Dialer
}

// NewSMTP creates an SMTP provider. STARTTLS is used whenever the server
// offers it; SSL or port 465 switch to implicit TLS.
func NewSMTP(cfg ProviderConfig) *SMTP {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.SSL {
		d.SSL = true
	}
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}
	if cfg.LocalName != "" {
		d.LocalName = cfg.LocalName
	}
	return &SMTP{dialer: d}
}

func (s *SMTP) GetName() string { return "smtp" }

// Send builds a text/plain message and hands it to the relay. gomail has no
// context support, so ctx does not bound the call; the dial timeout is gomail's.
func (s *SMTP) Send(_ context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	return nil
}

// HealthCheck dials the relay, authenticating if credentials are configured,
// and closes the session again.
func (s *SMTP) HealthCheck(_ context.Context) error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp: dial %s:%d: %w", s.dialer.Host, s.dialer.Port, err)
	}
	return sc.Close()
}
