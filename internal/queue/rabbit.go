package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/customer-auth/internal/logging"
)

// RabbitPublisher publishes notifications to a durable RabbitMQ queue.  Each
// Publish opens its own connection, so the publisher holds no state between
// requests.
type RabbitPublisher struct {
	URL   string
	Queue string
}

// Publish declares the queue (idempotent) and publishes n as a persistent
// JSON message through the default exchange.
func (p *RabbitPublisher) Publish(ctx context.Context, n EmailNotification) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare: %w", err)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// Default exchange, routing key = queue name.
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// RabbitConsumer consumes notifications from a RabbitMQ queue.
type RabbitConsumer struct {
	URL     string
	Queue   string
	Handler Handler
	Log     logging.Logger
}

// Run connects, consumes and reconnects with capped exponential backoff
// until ctx is cancelled.  Messages are acked after Handler succeeds and
// rejected (not requeued) when it fails, so a poison message cannot loop.
func (c *RabbitConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn(ctx, "notification consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn(ctx, "notification consumer: consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *RabbitConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn(ctx, "notification consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handle(ctx, c.Handler, d.Body); err != nil {
			c.Log.Error(ctx, "notification consumer: handle message failed", "error", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handle(ctx context.Context, h Handler, body []byte) error {
	n, err := decode(body)
	if err != nil {
		return err
	}
	return h(ctx, n)
}

// sleep waits for d or until ctx is done, reporting whether it waited fully.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
