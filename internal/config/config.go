package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Mail         MailConfig         `mapstructure:"mail"`
	API          APIConfig          `mapstructure:"api"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	ConfigServer ConfigServerConfig `mapstructure:"config_server"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MailConfig holds mail transport configuration.
type MailConfig struct {
	// Transport selects the provider: "smtp", "stdout" or "file".
	Transport          string `mapstructure:"transport"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	Sender             string `mapstructure:"sender"`
	SSL                bool   `mapstructure:"ssl"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	LocalName          string `mapstructure:"local_name"`
	OutputDir          string `mapstructure:"output_dir"`
}

// SenderAddress returns the configured From address, falling back to the
// SMTP username when no explicit sender is set.
func (m MailConfig) SenderAddress() string {
	if m.Sender != "" {
		return m.Sender
	}
	return m.Username
}

// APIConfig holds request handling options.
type APIConfig struct {
	LogIdentityHeaders bool       `mapstructure:"log_identity_headers"`
	Docs               DocsConfig `mapstructure:"docs"`
}

// DocsConfig is the descriptive header of the published OpenAPI document.
type DocsConfig struct {
	Title        string `mapstructure:"title"`
	Version      string `mapstructure:"version"`
	Description  string `mapstructure:"description"`
	ContactName  string `mapstructure:"contact_name"`
	ContactEmail string `mapstructure:"contact_email"`
	ContactURL   string `mapstructure:"contact_url"`
	LicenseName  string `mapstructure:"license_name"`
	LicenseURL   string `mapstructure:"license_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// ConfigServerConfig points at an optional external configuration server.
type ConfigServerConfig struct {
	URL     string        `mapstructure:"url"`
	Name    string        `mapstructure:"name"`
	Profile string        `mapstructure:"profile"`
	Timeout time.Duration `mapstructure:"timeout"`
}

const envPrefix = "NOTIFICATION"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("mail.transport", "smtp")
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.sender", "")
	v.SetDefault("mail.ssl", false)
	v.SetDefault("mail.insecure_skip_verify", false)
	v.SetDefault("mail.local_name", "")
	v.SetDefault("mail.output_dir", "")

	v.SetDefault("api.log_identity_headers", true)
	v.SetDefault("api.docs.title", "AMCLOUD Notification Service API")
	v.SetDefault("api.docs.version", "3.0.0")
	v.SetDefault("api.docs.description", "API documentation for the Notification microservice.")
	v.SetDefault("api.docs.contact_name", "AMCLOUD Support")
	v.SetDefault("api.docs.contact_email", "project.in3.uds@outlook.com")
	v.SetDefault("api.docs.contact_url", "https://platform.amcloud.cm")
	v.SetDefault("api.docs.license_name", "Apache 2.0")
	v.SetDefault("api.docs.license_url", "http://springdoc.org")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)

	v.SetDefault("config_server.url", "")
	v.SetDefault("config_server.name", "notification-service")
	v.SetDefault("config_server.profile", "default")
	v.SetDefault("config_server.timeout", 10*time.Second)
}

// Load reads configuration from the given config directory path.
// It looks for an optional file named "config.yaml" in that directory.
// Environment variables with prefix NOTIFICATION_ override file values.
// For example, NOTIFICATION_MAIL_HOST overrides mail.host.
// When config_server.url is set, properties served by the config server
// are merged over the file values; environment variables still win.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if url := v.GetString("config_server.url"); url != "" {
		props, err := fetchRemote(
			url,
			v.GetString("config_server.name"),
			v.GetString("config_server.profile"),
			v.GetDuration("config_server.timeout"),
		)
		if err != nil {
			return nil, fmt.Errorf("load remote config: %w", err)
		}
		for key, value := range props {
			if _, ok := os.LookupEnv(envKey(key)); ok {
				continue
			}
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return errors.New("logging.file_path is required when logging.output is file")
	}
	return nil
}
