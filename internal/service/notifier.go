package service

import (
	"context"
	"time"

	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/queue"
)

// QueueNotifier implements Notifier by publishing to a queue.Publisher from
// a background goroutine.  Each publish gets its own timeout, detached from
// the request that triggered it.
type QueueNotifier struct {
	pub     queue.Publisher
	timeout time.Duration
	log     logging.Logger
	now     func() time.Time
}

// NewQueueNotifier returns a notifier publishing through pub.  A zero timeout
// means five seconds.
func NewQueueNotifier(pub queue.Publisher, timeout time.Duration, log logging.Logger) *QueueNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logging.Nop()
	}
	return &QueueNotifier{pub: pub, timeout: timeout, log: log, now: time.Now}
}

// SendAsync schedules the e-mail and returns immediately.  Failures are
// logged and otherwise dropped.
func (n *QueueNotifier) SendAsync(email, subject, body string) {
	msg := queue.EmailNotification{
		To:          email,
		Subject:     subject,
		Body:        body,
		RequestedAt: n.now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.pub.Publish(ctx, msg); err != nil {
			n.log.Error(ctx, "publish email notification failed", "subject", subject, "error", err)
		}
	}()
}
