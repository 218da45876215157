package provider

import (
	"errors"
	"testing"
)

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr bool
	}{
		{"missing type", ProviderConfig{}, true},
		{"smtp valid", ProviderConfig{Type: "smtp", Host: "smtp.example.com", Port: 587}, false},
		{"smtp with credentials", ProviderConfig{Type: "smtp", Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"}, false},
		{"smtp missing host", ProviderConfig{Type: "smtp", Port: 587}, true},
		{"smtp zero port", ProviderConfig{Type: "smtp", Host: "smtp.example.com"}, true},
		{"smtp port out of range", ProviderConfig{Type: "smtp", Host: "smtp.example.com", Port: 70000}, true},
		{"smtp password without username", ProviderConfig{Type: "smtp", Host: "smtp.example.com", Port: 587, Password: "p"}, true},
		{"stdout", ProviderConfig{Type: "stdout"}, false},
		{"file", ProviderConfig{Type: "file"}, false},
		{"unknown", ProviderConfig{Type: "carrier-pigeon"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderConfig_ValidateUnknownIsUnsupported(t *testing.T) {
	cfg := ProviderConfig{Type: "sms"}
	if err := cfg.Validate(); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}
