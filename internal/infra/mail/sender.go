package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	From   string
	dialer dialer
	logger *zap.Logger
}

func NewSMTPSender(host string, port int, user, password, from string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
		logger: logger.Named("smtp"),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg usecase.OutgoingEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	for name, value := range msg.Tags {
		m.SetHeader("X-CRM-"+name, value)
	}
	m.SetBody("text/html", msg.HTMLBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	s.logger.Debug("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
