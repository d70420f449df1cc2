package mail

import (
	"context"
	"fmt"
	"sort"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type emailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	From   string
	emails emailsAPI
	logger *zap.Logger
}

func NewResendSender(apiKey, from string, logger *zap.Logger) *ResendSender {
	client := resend.NewClient(apiKey)
	return &ResendSender{
		From:   from,
		emails: client.Emails,
		logger: logger.Named("resend"),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg usecase.OutgoingEmail) error {
	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}

	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Tags:    resendTags(msg.Tags),
	}

	sent, err := s.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send to %s: %w", msg.To, err)
	}

	s.logger.Debug("email sent", zap.String("message_id", sent.Id), zap.String("to", msg.To))
	return nil
}

func resendTags(tags map[string]string) []resend.Tag {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]resend.Tag, 0, len(tags))
	for _, name := range names {
		out = append(out, resend.Tag{Name: name, Value: tags[name]})
	}
	return out
}
