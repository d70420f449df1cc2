package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestRenderer_HTML(t *testing.T) {
	r := NewRenderer()
	tpl := &entity.EmailTemplate{
		Subject: "Hi {{first_name}} & welcome",
		Body:    "<p>Hello {{ first_name }} from {{company}} {{unknown}}</p>",
		Format:  entity.TemplateFormatHTML,
	}

	subject, body, err := r.Render(tpl, map[string]string{"first_name": "Ana", "company": "<Acme & Co>"})

	require.NoError(t, err)
	assert.Equal(t, "Hi Ana & welcome", subject)
	assert.Equal(t, "<p>Hello Ana from &lt;Acme &amp; Co&gt; {{unknown}}</p>", body)
}

func TestRenderer_Markdown(t *testing.T) {
	r := NewRenderer()
	tpl := &entity.EmailTemplate{
		Subject: "{{full_name}}",
		Body:    "# Hello {{first_name}}\n\nThanks for **visiting**.\n\n<script>alert(1)</script>",
		Format:  entity.TemplateFormatMarkdown,
	}

	_, body, err := r.Render(tpl, usecase.SampleVars())

	require.NoError(t, err)
	assert.Contains(t, body, "<h1>Hello Jane</h1>")
	assert.Contains(t, body, "<strong>visiting</strong>")
	assert.NotContains(t, body, "<script>")
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{From: "crm@example.com", dialer: d, logger: zap.NewNop()}

	err := s.Send(context.Background(), usecase.OutgoingEmail{
		To:       "ana@example.com",
		ToName:   "Ana Lima",
		Subject:  "Welcome",
		HTMLBody: "<p>hi</p>",
		Tags:     map[string]string{"funnel_id": "f1"},
	})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	m := d.sent[0]
	assert.Equal(t, []string{"crm@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"Welcome"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"f1"}, m.GetHeader("X-CRM-funnel_id"))

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw.String(), "<p>hi</p>"))
}

func TestSMTPSender_Errors(t *testing.T) {
	s := &SMTPSender{dialer: &fakeDialer{err: errors.New("535 auth failed")}, logger: zap.NewNop()}
	err := s.Send(context.Background(), usecase.OutgoingEmail{To: "a@b.c"})
	assert.ErrorContains(t, err, "535 auth failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, usecase.OutgoingEmail{To: "a@b.c"}), context.Canceled)
}

type fakeEmails struct {
	params *resend.SendEmailRequest
	err    error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestResendSender_Send(t *testing.T) {
	api := &fakeEmails{}
	s := &ResendSender{From: "CRM <crm@example.com>", emails: api, logger: zap.NewNop()}

	err := s.Send(context.Background(), usecase.OutgoingEmail{
		To:       "ana@example.com",
		ToName:   "Ana Lima",
		Subject:  "Welcome",
		HTMLBody: "<p>hi</p>",
		Tags:     map[string]string{"phase": "2", "funnel_id": "f1"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Ana Lima <ana@example.com>"}, api.params.To)
	assert.Equal(t, "<p>hi</p>", api.params.Html)
	assert.Equal(t, []resend.Tag{{Name: "funnel_id", Value: "f1"}, {Name: "phase", Value: "2"}}, api.params.Tags)

	api.err = errors.New("rate limited")
	assert.Error(t, s.Send(context.Background(), usecase.OutgoingEmail{To: "ana@example.com"}))
}
