package mailer

import (
	"context"
	"fmt"

	"dailynews/internal/config"
)

// Mailer delivers a plain-text summary to one or more recipients.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// New builds the configured transport.
func New(ctx context.Context, cfg *config.Config) (Mailer, error) {
	switch cfg.Mailer.Transport {
	case "smtp":
		return NewSMTPMailer(
			cfg.Mailer.SMTP.Host,
			cfg.Mailer.SMTP.Port,
			cfg.Mailer.SMTP.Username,
			cfg.Mailer.SMTP.Password,
			cfg.Mailer.SMTP.From,
		), nil
	case "ses":
		return NewSESMailer(ctx, cfg.Mailer.SES.Region, cfg.Mailer.SES.From)
	case "":
		return nil, fmt.Errorf("mailer: no transport configured (set mailer.transport to smtp or ses)")
	default:
		return nil, fmt.Errorf("mailer: unsupported transport %q", cfg.Mailer.Transport)
	}
}
