// Command server runs the customer authentication HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/customer-auth/internal/app"
	"github.com/iliyamo/customer-auth/internal/config"
	"github.com/iliyamo/customer-auth/internal/database"
	"github.com/iliyamo/customer-auth/internal/handler"
	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/router"
	"github.com/iliyamo/customer-auth/internal/service"
)

func main() {
	cfg := config.Load()
	log := app.NewLogger(os.Stdout, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.IsDevelopment() {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	pub, closePub, err := app.NewPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePub()

	notifier := service.NewQueueNotifier(pub, cfg.NotifyTimeout, log)
	auth := app.NewAuth(cfg, db, notifier, log)

	e, err := router.New(router.Deps{
		Auth:             handler.NewAuthHandler(auth.Service, log),
		Tokens:           auth.Tokens,
		Log:              log,
		MinClientVersion: cfg.MinClientVersion,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "broker", cfg.NotifyBroker)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
