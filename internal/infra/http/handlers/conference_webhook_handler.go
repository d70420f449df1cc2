package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/twilio/twilio-go/client"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ConferenceEventHandler interface {
	Execute(ctx context.Context, in usecase.ConferenceEventInput) error
}

// ConferenceWebhookHandler receives telephony conference status callbacks. It
// always answers 200 so the provider never retries.
type ConferenceWebhookHandler struct {
	Events        ConferenceEventHandler
	AuthToken     string
	PublicBaseURL string
	Logger        *zap.Logger
}

func NewConferenceWebhookHandler(events ConferenceEventHandler, authToken, publicBaseURL string, logger *zap.Logger) *ConferenceWebhookHandler {
	return &ConferenceWebhookHandler{
		Events:        events,
		AuthToken:     authToken,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		Logger:        logger.Named("conference_webhook"),
	}
}

func (h *ConferenceWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	defer ok(w)

	if err := r.ParseForm(); err != nil {
		h.Logger.Warn("unreadable callback body", zap.Error(err))
		return
	}

	if h.AuthToken != "" {
		signature := r.Header.Get("X-Twilio-Signature")
		if !ValidSignature(h.AuthToken, h.callbackURL(r), r.PostForm, signature) {
			h.Logger.Warn("callback signature rejected", zap.String("path", r.URL.Path))
			return
		}
	}

	in := usecase.ConferenceEventInput{
		SessionID:     r.URL.Query().Get("session_id"),
		ConferenceSid: r.PostForm.Get("ConferenceSid"),
		Event:         r.PostForm.Get("StatusCallbackEvent"),
		CallSid:       r.PostForm.Get("CallSid"),
		FriendlyName:  r.PostForm.Get("FriendlyName"),
	}

	err := h.Events.Execute(r.Context(), in)
	fields := []zap.Field{
		zap.String("event", in.Event),
		zap.String("conference_sid", in.ConferenceSid),
		zap.String("call_sid", in.CallSid),
	}
	switch {
	case err == nil:
		h.Logger.Debug("callback applied", fields...)
	case errors.Is(err, usecase.ErrEventIgnored):
		h.Logger.Info("callback ignored", append(fields, zap.Error(err))...)
	default:
		h.Logger.Error("callback failed", append(fields, zap.Error(err))...)
	}
}

// callbackURL rebuilds the URL the provider signed.
func (h *ConferenceWebhookHandler) callbackURL(r *http.Request) string {
	if h.PublicBaseURL != "" {
		return h.PublicBaseURL + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// ValidSignature checks an X-Twilio-Signature against the callback URL and
// form. URLs with and without the default port are both accepted.
func ValidSignature(token, callbackURL string, form url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	validator := client.NewRequestValidator(token)
	return validator.Validate(callbackURL, formParams(form), signature)
}

// formParams flattens the callback form; the provider never repeats a key.
func formParams(form url.Values) map[string]string {
	params := make(map[string]string, len(form))
	for k := range form {
		params[k] = form.Get(k)
	}
	return params
}

func ok(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
