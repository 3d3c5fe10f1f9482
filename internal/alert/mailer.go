// Package alert reports sync failures to a human. The daemon keeps
// running and retrying; alerts are how anyone finds out it is limping.
package alert

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/saulo-duarte/taskbridge/internal/config"
)

type Notifier interface {
	// Notify sends one failure report. Implementations must never block a
	// cycle on delivery problems: failures are logged and swallowed.
	Notify(ctx context.Context, subject, body string)
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewNotifier builds an SMTP notifier from the email settings, or a no-op
// notifier when SMTP is not configured.
func NewNotifier(cfg config.EmailConfig) Notifier {
	if !cfg.Enabled() {
		return Noop{}
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &mailer{dialer: dialer, from: cfg.User, to: cfg.To}
}

func (m *mailer) Notify(ctx context.Context, subject, body string) {
	log := config.WithContext(ctx)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.WithError(err).Error("Failed to send alert email")
		return
	}
	log.WithField("to", m.to).Info("Alert email sent")
}

// Noop is used when no SMTP settings are configured; failures are still
// logged by the loop.
type Noop struct{}

func (Noop) Notify(ctx context.Context, subject, body string) {}
