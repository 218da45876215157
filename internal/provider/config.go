package provider

import (
	"errors"
	"fmt"
)

// ProviderConfig holds configuration for a mail transport.
type ProviderConfig struct {
	// Type identifies the provider: "smtp", "stdout" or "file".
	Type string

	// SMTP connection settings.
	Host     string
	Port     int
	Username string
	Password string

	// SSL forces implicit TLS. Port 465 implies it.
	SSL bool
	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool
	// LocalName is the hostname sent in HELO/EHLO.
	LocalName string

	// OutputDir is where the file provider writes messages.
	OutputDir string
}

// Validate checks that required fields are set based on provider type.
func (c *ProviderConfig) Validate() error {
	switch c.Type {
	case "":
		return errors.New("provider type is required")
	case "smtp":
		if c.Host == "" {
			return errors.New("smtp: host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("smtp: invalid port %d", c.Port)
		}
		if c.Password != "" && c.Username == "" {
			return errors.New("smtp: username is required when password is set")
		}
	case "stdout", "file":
		// No configuration required.
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, c.Type)
	}

	return nil
}
