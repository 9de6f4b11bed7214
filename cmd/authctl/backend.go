package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/iliyamo/customer-auth/internal/app"
	"github.com/iliyamo/customer-auth/internal/config"
	"github.com/iliyamo/customer-auth/internal/database"
	"github.com/iliyamo/customer-auth/internal/model"
	"github.com/iliyamo/customer-auth/internal/service"
)

// backend is what the subcommands operate on.
type backend interface {
	Migrate(ctx context.Context) error
	ImportUsers(ctx context.Context, users []service.NewUser) (int, error)
	IssueToken(ctx context.Context, customerID string) (string, time.Time, error)
	Whoami(ctx context.Context, token string) (*model.User, error)
	Close() error
}

type opener func(ctx context.Context) (backend, error)

// dbBackend is the real backend: MySQL plus the AuthService.  Reset e-mails
// are never sent from the CLI.
type dbBackend struct {
	db   *sql.DB
	auth app.Auth
}

func openBackend(ctx context.Context) (backend, error) {
	cfg := config.Load()
	log := app.NewLogger(os.Stderr, cfg)
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &dbBackend{db: db, auth: app.NewAuth(cfg, db, discardNotifier{}, log)}, nil
}

func (b *dbBackend) Migrate(ctx context.Context) error { return database.EnsureSchema(ctx, b.db) }

func (b *dbBackend) ImportUsers(ctx context.Context, users []service.NewUser) (int, error) {
	return b.auth.Service.ImportUsers(ctx, users)
}

func (b *dbBackend) IssueToken(ctx context.Context, customerID string) (string, time.Time, error) {
	u, err := b.auth.Service.UserByID(ctx, customerID)
	if err != nil {
		return "", time.Time{}, err
	}
	return b.auth.Service.IssueSessionToken(u)
}

func (b *dbBackend) Whoami(ctx context.Context, token string) (*model.User, error) {
	return b.auth.Service.ResolveSession(ctx, token)
}

func (b *dbBackend) Close() error { return b.db.Close() }

// discardNotifier drops notifications; no CLI command triggers one.
type discardNotifier struct{}

func (discardNotifier) SendAsync(string, string, string) {}
