package provider

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
)

// receivedMail is one message accepted by the test SMTP server.
type receivedMail struct {
	from string
	to   []string
	data string
}

// testBackend is an in-process SMTP server backend that records messages.
// When username is set, PLAIN authentication is required before MAIL FROM.
type testBackend struct {
	username string
	password string

	mu       sync.Mutex
	received []receivedMail
	authUser string
}

func (b *testBackend) NewSession(_ *gosmtp.Conn) (gosmtp.Session, error) {
	return &testSession{backend: b}, nil
}

func (b *testBackend) messages() []receivedMail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]receivedMail(nil), b.received...)
}

type testSession struct {
	backend       *testBackend
	authenticated bool
	current       receivedMail
}

func (s *testSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *testSession) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, &gosmtp.SMTPError{
			Code:         504,
			EnhancedCode: gosmtp.EnhancedCode{5, 7, 4},
			Message:      "Unsupported authentication mechanism",
		}
	}
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.backend.username || password != s.backend.password {
			return errors.New("invalid credentials")
		}
		s.authenticated = true
		s.backend.mu.Lock()
		s.backend.authUser = username
		s.backend.mu.Unlock()
		return nil
	}), nil
}

func (s *testSession) Mail(from string, _ *gosmtp.MailOptions) error {
	if s.backend.username != "" && !s.authenticated {
		return &gosmtp.SMTPError{
			Code:         530,
			EnhancedCode: gosmtp.EnhancedCode{5, 7, 0},
			Message:      "Authentication required",
		}
	}
	s.current.from = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	s.current.to = append(s.current.to, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.data = string(b)

	s.backend.mu.Lock()
	s.backend.received = append(s.backend.received, s.current)
	s.backend.mu.Unlock()
	return nil
}

func (s *testSession) Reset() {
	s.current = receivedMail{}
}

func (s *testSession) Logout() error {
	return nil
}

// startSMTPServer runs an SMTP server on a loopback port for the duration of the test.
func startSMTPServer(t *testing.T, be *testBackend) (string, int) {
	t.Helper()

	s := gosmtp.NewServer(be)
	s.Domain = "localhost"
	s.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go s.Serve(ln)
	t.Cleanup(func() { s.Close() })

	return "127.0.0.1", ln.Addr().(*net.TCPAddr).Port
}

func TestSMTP_GetName(t *testing.T) {
	p := NewSMTP(ProviderConfig{Type: "smtp", Host: "localhost", Port: 25})
	if p.GetName() != "smtp" {
		t.Errorf("expected name smtp, got %s", p.GetName())
	}
}

func TestNewSMTP_DialerSettings(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ProviderConfig
		wantSSL  bool
		insecure bool
	}{
		{"starttls port", ProviderConfig{Host: "mail.example.com", Port: 587}, false, false},
		{"implicit tls port", ProviderConfig{Host: "mail.example.com", Port: 465}, true, false},
		{"forced ssl", ProviderConfig{Host: "mail.example.com", Port: 2465, SSL: true}, true, false},
		{"insecure skip verify", ProviderConfig{Host: "mail.example.com", Port: 587, InsecureSkipVerify: true}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSMTP(tt.cfg)
			if p.dialer.SSL != tt.wantSSL {
				t.Errorf("expected SSL=%v, got %v", tt.wantSSL, p.dialer.SSL)
			}
			gotInsecure := p.dialer.TLSConfig != nil && p.dialer.TLSConfig.InsecureSkipVerify
			if gotInsecure != tt.insecure {
				t.Errorf("expected InsecureSkipVerify=%v, got %v", tt.insecure, gotInsecure)
			}
		})
	}
}

func TestSMTP_Send(t *testing.T) {
	be := &testBackend{}
	host, port := startSMTPServer(t, be)

	p := NewSMTP(ProviderConfig{Type: "smtp", Host: host, Port: port})
	msg := &Message{
		ID:      "msg-1",
		From:    "sender@example.com",
		To:      "a@b.com",
		Subject: "Hi",
		Text:    "Hello",
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := be.messages()
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].from != "sender@example.com" {
		t.Errorf("expected envelope sender sender@example.com, got %s", got[0].from)
	}
	if len(got[0].to) != 1 || got[0].to[0] != "a@b.com" {
		t.Errorf("expected envelope recipient a@b.com, got %v", got[0].to)
	}

	data := got[0].data
	for _, want := range []string{
		"From: sender@example.com",
		"To: a@b.com",
		"Subject: Hi",
		"text/plain",
		"Hello",
	} {
		if !strings.Contains(data, want) {
			t.Errorf("expected message data to contain %q, got:\n%s", want, data)
		}
	}
}

func TestSMTP_SendTwice(t *testing.T) {
	be := &testBackend{}
	host, port := startSMTPServer(t, be)

	p := NewSMTP(ProviderConfig{Type: "smtp", Host: host, Port: port})
	msg := &Message{From: "sender@example.com", To: "a@b.com", Subject: "Hi", Text: "Hello"}

	for i := 0; i < 2; i++ {
		if err := p.Send(context.Background(), msg); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if n := len(be.messages()); n != 2 {
		t.Errorf("expected 2 independent deliveries, got %d", n)
	}
}

func TestSMTP_SendWithAuth(t *testing.T) {
	be := &testBackend{username: "bot@example.com", password: "s3cret"}
	host, port := startSMTPServer(t, be)

	p := NewSMTP(ProviderConfig{
		Type:     "smtp",
		Host:     host,
		Port:     port,
		Username: "bot@example.com",
		Password: "s3cret",
	})
	msg := &Message{From: "bot@example.com", To: "a@b.com", Subject: "Hi", Text: "Hello"}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	be.mu.Lock()
	authUser := be.authUser
	be.mu.Unlock()
	if authUser != "bot@example.com" {
		t.Errorf("expected PLAIN auth as bot@example.com, got %q", authUser)
	}
	if n := len(be.messages()); n != 1 {
		t.Errorf("expected 1 message, got %d", n)
	}
}

func TestSMTP_SendAuthFailure(t *testing.T) {
	be := &testBackend{username: "bot@example.com", password: "s3cret"}
	host, port := startSMTPServer(t, be)

	p := NewSMTP(ProviderConfig{
		Type:     "smtp",
		Host:     host,
		Port:     port,
		Username: "bot@example.com",
		Password: "wrong",
	})
	msg := &Message{From: "bot@example.com", To: "a@b.com", Subject: "Hi", Text: "Hello"}

	err := p.Send(context.Background(), msg)
	if err == nil {
		t.Fatal("expected authentication error")
	}
	if !strings.HasPrefix(err.Error(), "smtp: send:") {
		t.Errorf("expected wrapped smtp error, got %v", err)
	}
	if n := len(be.messages()); n != 0 {
		t.Errorf("expected no delivered messages, got %d", n)
	}
}

func TestSMTP_SendEmptyRecipient(t *testing.T) {
	be := &testBackend{}
	host, port := startSMTPServer(t, be)

	p := NewSMTP(ProviderConfig{Type: "smtp", Host: host, Port: port})
	msg := &Message{From: "sender@example.com", To: "", Subject: "Hi", Text: "Hello"}

	if err := p.Send(context.Background(), msg); err == nil {
		t.Fatal("expected error for empty recipient")
	}
	if n := len(be.messages()); n != 0 {
		t.Errorf("expected no delivered messages, got %d", n)
	}
}

func TestSMTP_SendConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	p := NewSMTP(ProviderConfig{Type: "smtp", Host: "127.0.0.1", Port: port})
	msg := &Message{From: "sender@example.com", To: "a@b.com", Subject: "Hi", Text: "Hello"}

	err = p.Send(context.Background(), msg)
	if err == nil {
		t.Fatal("expected connection error")
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("expected underlying *net.OpError to be preserved, got %T: %v", err, err)
	}
}

func TestSMTP_HealthCheck(t *testing.T) {
	be := &testBackend{}
	host, port := startSMTPServer(t, be)

	p := NewSMTP(ProviderConfig{Type: "smtp", Host: host, Port: port})
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy relay, got %v", err)
	}
}

func TestSMTP_HealthCheckUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	p := NewSMTP(ProviderConfig{Type: "smtp", Host: "127.0.0.1", Port: port})
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for unreachable relay")
	}
}
