package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sungwon/notification-service/internal/api"
	"github.com/sungwon/notification-service/internal/config"
	"github.com/sungwon/notification-service/internal/logger"
	"github.com/sungwon/notification-service/internal/notification"
	"github.com/sungwon/notification-service/internal/provider"
)

var (
	configDir   string
	sendTo      string
	sendSubject string
	sendContent string
)

var rootCmd = &cobra.Command{
	Use:           "notification-service",
	Short:         "Email notification microservice",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env populates the environment before config is read.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one notification through the configured transport",
	RunE:  runSend,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "config", "directory containing config.yaml")

	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "message subject")
	sendCmd.Flags().StringVar(&sendContent, "content", "", "message body")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// providerConfig maps the mail section of the service config onto a
// transport configuration.
func providerConfig(m config.MailConfig) provider.ProviderConfig {
	return provider.ProviderConfig{
		Type:               m.Transport,
		Host:               m.Host,
		Port:               m.Port,
		Username:           m.Username,
		Password:           m.Password,
		SSL:                m.SSL,
		InsecureSkipVerify: m.InsecureSkipVerify,
		LocalName:          m.LocalName,
		OutputDir:          m.OutputDir,
	}
}

// docInfo maps the docs section of the service config onto the published
// API document header.
func docInfo(d config.DocsConfig) api.DocInfo {
	return api.DocInfo{
		Title:        d.Title,
		Version:      d.Version,
		Description:  d.Description,
		ContactName:  d.ContactName,
		ContactEmail: d.ContactEmail,
		ContactURL:   d.ContactURL,
		LicenseName:  d.LicenseName,
		LicenseURL:   d.LicenseURL,
	}
}

// setup loads configuration and builds the logger, transport and dispatcher.
func setup() (*config.Config, zerolog.Logger, provider.Provider, *notification.Service, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, zerolog.Nop(), nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewFromOptions(logger.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})

	p, err := provider.NewProvider(providerConfig(cfg.Mail))
	if err != nil {
		return nil, log, nil, nil, fmt.Errorf("failed to create mail transport: %w", err)
	}

	sender := cfg.Mail.SenderAddress()
	if sender == "" {
		log.Warn().Msg("no sender address configured; set NOTIFICATION_MAIL_SENDER or NOTIFICATION_MAIL_USERNAME")
	}

	return cfg, log, p, notification.NewService(p, sender, log), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, p, svc, err := setup()
	if err != nil {
		return err
	}

	log.Info().Str("transport", p.GetName()).Msg("starting notification service")

	router := api.NewRouter(api.RouterConfig{
		Dispatcher:         svc,
		Transport:          p,
		Log:                log,
		LogIdentityHeaders: cfg.API.LogIdentityHeaders,
		DocInfo:            docInfo(cfg.API.Docs),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	_, _, _, svc, err := setup()
	if err != nil {
		return err
	}

	ctx := logger.WithCorrelationID(cmd.Context(), logger.NewCorrelationID())
	if err := svc.SendNotification(ctx, sendTo, sendSubject, sendContent); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), api.ConfirmationMessage)
	return nil
}
