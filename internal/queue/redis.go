package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/customer-auth/internal/logging"
)

// RedisPublisher pushes notifications onto a Redis list used as a FIFO work
// queue (LPUSH here, BRPOP in RedisConsumer).
type RedisPublisher struct {
	Client redis.Cmdable
	Key    string
}

func (p *RedisPublisher) Publish(ctx context.Context, n EmailNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("redis: marshal: %w", err)
	}
	if err := p.Client.LPush(ctx, p.Key, string(body)).Err(); err != nil {
		return fmt.Errorf("redis: lpush %s: %w", p.Key, err)
	}
	return nil
}

// RedisConsumer pops notifications from a Redis list.  Delivery is
// at-most-once: a message popped by a consumer that then crashes is lost.
type RedisConsumer struct {
	Client  redis.Cmdable
	Key     string
	Handler Handler
	Log     logging.Logger

	// PollTimeout bounds each BRPOP so cancellation is noticed; one second
	// when zero.
	PollTimeout time.Duration
}

// Run pops and handles messages until ctx is cancelled.
func (c *RedisConsumer) Run(ctx context.Context) error {
	timeout := c.PollTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := c.Client.BRPop(ctx, timeout, c.Key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn(ctx, "notification consumer: brpop failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		// BRPOP replies with [key, value].
		if len(res) != 2 {
			continue
		}
		if err := handle(ctx, c.Handler, []byte(res[1])); err != nil {
			c.Log.Error(ctx, "notification consumer: handle message failed", "error", err)
		}
	}
}
