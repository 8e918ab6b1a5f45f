package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/eventide-gm/internal/api"
	"github.com/mcoot/eventide-gm/internal/factory"
	"github.com/mcoot/eventide-gm/internal/transport/telegram"
)

func newRunCmd() *cobra.Command {
	var webhookURL, httpAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Telegram and run the bot",
		Long: `Run the bot until interrupted.

Without WEBHOOK_URL the bot long-polls Telegram. With it, Telegram posts
updates to <WEBHOOK_URL>/webhook/<secret> on the HTTP server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cfg.Settings()
			if err != nil {
				return err
			}
			if webhookURL != "" {
				settings.WebhookURL = webhookURL
			}
			if httpAddr != "" {
				settings.HTTPAddr = httpAddr
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			logger, err := settings.Logger(os.Stdout)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := factory.New(ctx, factory.Config{Settings: settings, Logger: logger})
			if err != nil {
				logger.Error("failed to create application", slog.String("error", err.Error()))
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("close failed", slog.String("error", err.Error()))
				}
			}()

			return serve(ctx, app, logger)
		},
	}

	cmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Public https base URL for webhook mode, overrides WEBHOOK_URL")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address, overrides HTTP_ADDR")

	return cmd
}

// serve runs the HTTP server and the update source until ctx is cancelled
func serve(ctx context.Context, app *factory.App, logger *slog.Logger) error {
	settings := app.Settings
	webhook := settings.WebhookURL != ""

	routerCfg := api.RouterConfig{
		Logger:    logger,
		Stats:     app.Store,
		Clock:     app.Clock,
		StartedAt: app.StartedAt,
		Mode:      api.ModePolling,
	}
	if webhook {
		routerCfg.Mode = api.ModeWebhook
		routerCfg.Updates = app.Events
		routerCfg.WebhookSecret = app.WebhookSecret
	}

	server := api.NewServer(api.NewRouter(routerCfg), api.DefaultServerConfig(settings.HTTPAddr), logger)

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info("server started", slog.String("addr", server.Addr()), slog.String("mode", routerCfg.Mode))

	if webhook {
		url := strings.TrimSuffix(settings.WebhookURL, "/") + "/webhook/" + app.WebhookSecret
		if err := app.Telegram.SetWebhook(url); err != nil {
			_ = server.Shutdown(context.Background())
			return err
		}
	} else {
		if err := app.Telegram.DeleteWebhook(); err != nil {
			_ = server.Shutdown(context.Background())
			return err
		}
		go func() {
			if err := app.Telegram.Poll(ctx, app.Events, telegram.DefaultPollTimeout); err != nil {
				errCh <- err
				return
			}
			if ctx.Err() == nil {
				errCh <- errors.New("update channel closed")
			}
		}()
	}

	var runErr error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			runErr = err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return errors.Join(runErr, err)
	}
	logger.Info("server stopped")
	return runErr
}
