// Command mailer consumes e-mail notifications published by the API and
// delivers them over SMTP.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/customer-auth/internal/app"
	"github.com/iliyamo/customer-auth/internal/config"
	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/mailer"
	"github.com/iliyamo/customer-auth/internal/queue"
)

type consumer interface {
	Run(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	log := app.NewLogger(os.Stdout, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, closeFn, err := newConsumer(ctx, cfg, newSender(cfg, log), log)
	if err != nil {
		log.Error(ctx, "mailer: setup failed", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	log.Info(ctx, "mailer started", "broker", cfg.NotifyBroker, "queue", cfg.NotifyQueue)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "mailer stopped", "error", err)
		os.Exit(1)
	}
	log.Info(context.Background(), "mailer stopped")
}

func newSender(cfg config.Config, log logging.Logger) mailer.Sender {
	if cfg.SMTPHost == "" {
		return mailer.LogSender{Log: log}
	}
	return mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
}

func newConsumer(ctx context.Context, cfg config.Config, s mailer.Sender, log logging.Logger) (consumer, func(), error) {
	switch cfg.NotifyBroker {
	case config.BrokerRabbitMQ:
		return &queue.RabbitConsumer{URL: cfg.RabbitMQURL, Queue: cfg.NotifyQueue, Handler: s.Send, Log: log}, func() {}, nil
	case config.BrokerRedis:
		rdb, err := config.NewRedisClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		c := &queue.RedisConsumer{Client: rdb, Key: cfg.NotifyQueue, Handler: s.Send, Log: log}
		return c, func() { _ = rdb.Close() }, nil
	}
	return nil, nil, errors.New("mailer: NOTIFY_BROKER " + cfg.NotifyBroker + " has no consumer")
}
