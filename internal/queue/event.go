// Package queue defines the e-mail notification message and the brokers
// that carry it from the API to the mailer.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// EmailNotification is published whenever the API wants an e-mail sent.
// The consumer needs nothing else to deliver it.
type EmailNotification struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	RequestedAt string `json:"requested_at"` // RFC 3339, UTC
}

// Publisher hands a notification to a broker.
type Publisher interface {
	Publish(ctx context.Context, n EmailNotification) error
}

// Handler processes one delivered notification.  A returned error rejects
// the message without requeueing it.
type Handler func(ctx context.Context, n EmailNotification) error

func decode(body []byte) (EmailNotification, error) {
	var n EmailNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return n, fmt.Errorf("unmarshal: %w", err)
	}
	if n.To == "" {
		return n, fmt.Errorf("notification without recipient")
	}
	return n, nil
}
