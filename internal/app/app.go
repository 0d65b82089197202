// Package app wires configuration into running subsystems and drives the
// selected run mode until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polygate/internal/config"
)

// App owns the wired subsystems for one process lifetime.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	deps    *Dependencies
	cleanup func()
}

// New creates an App from validated configuration. The logger is passed on
// to subsystems, which tag their own component attribute.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run wires the dependencies for the configured mode and blocks until the
// mode finishes or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting",
		slog.String("mode", a.cfg.Mode),
		slog.Any("config", config.RedactedConfig(a.cfg)),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.deps = deps
	a.cleanup = cleanup

	switch a.cfg.Mode {
	case "monitor":
		return a.runMonitor(ctx)
	case "capture":
		return a.runCapture(ctx)
	case "scrape":
		return a.runScrape(ctx)
	default:
		return fmt.Errorf("app: unknown mode %q", a.cfg.Mode)
	}
}

// Close releases all wired subsystems. Safe to call after a failed Run.
func (a *App) Close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
	a.logger.Info("stopped")
}
