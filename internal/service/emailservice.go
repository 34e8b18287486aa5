package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/email"
)

// Notifier delivers one outbound email. Workflow services treat delivery as
// best-effort: by the time a notification is sent the state change has
// already committed, so failures are logged and never propagated.
type Notifier interface {
	Send(ctx context.Context, t email.Template) error
}

type EmailService struct {
	Settings  email.SMTPSettings
	FromName  string
	FromEmail string
}

func (s *EmailService) Send(_ context.Context, t email.Template) error {
	if s == nil || s.Settings.Host == "" {
		return fmt.Errorf("smtp not configured")
	}
	if t.Recipient() == "" {
		return fmt.Errorf("email recipient required")
	}

	return email.SendSMTP(s.Settings, email.Message{
		FromName:  s.FromName,
		FromEmail: s.FromEmail,
		ToEmail:   t.Recipient(),
		Subject:   t.Subject(),
		TextBody:  t.Body(),
	})
}

// sendBestEffort degrades notification failures to a log line.
func sendBestEffort(ctx context.Context, logger *slog.Logger, n Notifier, t email.Template) {
	if n == nil {
		return
	}
	if err := n.Send(ctx, t); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("email send failed",
			"template", fmt.Sprintf("%T", t),
			"recipient", t.Recipient(),
			"err", err,
		)
	}
}
