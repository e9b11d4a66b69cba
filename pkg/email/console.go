package email

import (
	"context"
	"log/slog"

	"github.com/recruitly/entitlements/pkg/logger"
)

// ConsoleSender writes messages to the log instead of delivering them.
// Used in development and tests.
type ConsoleSender struct {
	log *slog.Logger
}

// NewConsoleSender returns a ConsoleSender. A nil logger discards output.
func NewConsoleSender(log *slog.Logger) *ConsoleSender {
	if log == nil {
		log = logger.Discard()
	}
	return &ConsoleSender{log: log}
}

// Send implements Sender.
func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
		slog.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
