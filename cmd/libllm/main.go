package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"libllm/internal/app"
	"libllm/internal/config"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "libllm",
		Usage: "complete notes and documents with a text completion backend",
		Commands: []*cli.Command{
			serveCommand(),
			completeCommand(),
			modelsCommand(),
			settingsCommand(),
		},
	}
}

// setup loads configuration, installs the default logger writing to w and
// wires the application.
func setup(ctx context.Context, w *os.File) (*app.App, error) {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.SetDefault(app.NewLogger(w, cfg))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, os.Stdout)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := ":" + a.Config.APIPort
			server := &nethttp.Server{
				Addr:              addr,
				Handler:           a.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Starting API server", "addr", addr, "vaults", a.Config.VaultNames())
				slog.Debug("LLM configuration", "base_url", a.Config.LLMBaseURL, "settings_backend", a.Config.SettingsBackend)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, nethttp.ErrServerClosed) {
					return fmt.Errorf("API server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("Shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
