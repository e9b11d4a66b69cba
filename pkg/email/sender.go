package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	// Tag groups messages in provider analytics.
	Tag string `json:"tag,omitempty"`
}

// Validate checks the recipient address and required fields.
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrInvalidMessage, m.To, err)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// New returns the sender selected by cfg.Provider.
func New(cfg Config, log *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case ProviderConsole, "":
		return NewConsoleSender(log), nil
	case ProviderPostmark:
		return NewPostmarkSender(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
