// Package app assembles the service from a config.Config.  The binaries
// under cmd/ share it so they wire the same collaborators the same way.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/iliyamo/customer-auth/internal/config"
	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/queue"
	"github.com/iliyamo/customer-auth/internal/repository"
	"github.com/iliyamo/customer-auth/internal/service"
	"github.com/iliyamo/customer-auth/internal/utils"
)

// NewLogger builds the process logger from cfg.
func NewLogger(w io.Writer, cfg config.Config) logging.Logger {
	return logging.New(w, cfg.LogLevel, cfg.LogFormat)
}

// NewPublisher returns the publisher for cfg.NotifyBroker and a function
// releasing its resources.
func NewPublisher(ctx context.Context, cfg config.Config, log logging.Logger) (queue.Publisher, func(), error) {
	switch cfg.NotifyBroker {
	case config.BrokerRabbitMQ:
		return &queue.RabbitPublisher{URL: cfg.RabbitMQURL, Queue: cfg.NotifyQueue}, func() {}, nil
	case config.BrokerRedis:
		rdb, err := config.NewRedisClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return &queue.RedisPublisher{Client: rdb, Key: cfg.NotifyQueue}, func() { _ = rdb.Close() }, nil
	case config.BrokerLog:
		return &queue.LogPublisher{Log: log}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown notification broker %q", cfg.NotifyBroker)
}

// Auth bundles the service and the token service the HTTP layer verifies
// bearer tokens with.
type Auth struct {
	Service *service.AuthService
	Tokens  *utils.TokenService
}

// NewAuth wires an AuthService backed by MySQL.
func NewAuth(cfg config.Config, db *sql.DB, notifier service.Notifier, log logging.Logger) Auth {
	clock := utils.SystemClock{}
	tokens := utils.NewTokenService(cfg.JWTSecret, clock)
	svc := service.NewAuthService(
		repository.NewUserRepo(db),
		utils.NewPasswordHasher(cfg.BcryptCost),
		tokens,
		utils.NewVerificationCodes(clock),
		notifier,
		log,
		service.Options{
			TokenTTL:      cfg.AccessTokenTTL,
			CodeTTL:       cfg.VerificationCodeTTL,
			LogResetCodes: cfg.LogResetCodes,
		},
	)
	return Auth{Service: svc, Tokens: tokens}
}
