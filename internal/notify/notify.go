// Package notify dispatches email notifications. Dispatch is
// fire-and-forget: callers enqueue and never observe delivery.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer enqueues an email for asynchronous delivery.
type Mailer interface {
	Enqueue(ctx context.Context, subject, body string, recipients []string) error
}

// ConsoleMailer logs emails instead of sending them. Used when no
// message queue is configured, and in tests.
type ConsoleMailer struct {
	log *zerolog.Logger
}

// NewConsoleMailer creates a mailer that writes to the log.
func NewConsoleMailer(logger *zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: logger}
}

// Enqueue logs the email and succeeds.
func (m *ConsoleMailer) Enqueue(_ context.Context, subject, body string, recipients []string) error {
	m.log.Info().
		Str("subject", subject).
		Strs("recipients", recipients).
		Int("body_bytes", len(body)).
		Msg("email enqueued (console)")
	return nil
}
