package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	ConferenceStart  = "conference-start"
	ConferenceEnd    = "conference-end"
	ParticipantJoin  = "participant-join"
	ParticipantLeave = "participant-leave"
)

const friendlyNamePrefix = "turbo-"

// ConferenceEventInput mirrors the telephony provider's status callback form.
type ConferenceEventInput struct {
	SessionID     string
	ConferenceSid string
	Event         string
	CallSid       string
	FriendlyName  string
}

// NormalizeConferenceEvent maps short and long event names onto one set.
// Unknown events come back empty.
func NormalizeConferenceEvent(event string) string {
	switch strings.ToLower(strings.TrimSpace(event)) {
	case "start", ConferenceStart:
		return ConferenceStart
	case "end", ConferenceEnd:
		return ConferenceEnd
	case "join", ParticipantJoin:
		return ParticipantJoin
	case "leave", ParticipantLeave:
		return ParticipantLeave
	}
	return ""
}

// ResolveSessionID prefers the explicit session id and falls back to a
// "turbo-<uuid>" conference friendly name.
func ResolveSessionID(in ConferenceEventInput) string {
	if id := strings.TrimSpace(in.SessionID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
		return ""
	}
	name := strings.TrimSpace(in.FriendlyName)
	if !strings.HasPrefix(name, friendlyNamePrefix) {
		return ""
	}
	id := strings.TrimPrefix(name, friendlyNamePrefix)
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

var ErrEventIgnored = errors.New("conference event ignored")

type HandleConferenceEventUseCase struct {
	Turbo    entity.TurboRepositoryInterface
	Calls    entity.CallRepositoryInterface
	Recorder EventRecorder
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewHandleConferenceEventUseCase(turbo entity.TurboRepositoryInterface, calls entity.CallRepositoryInterface, recorder EventRecorder, logger *zap.Logger) *HandleConferenceEventUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &HandleConferenceEventUseCase{
		Turbo:    turbo,
		Calls:    calls,
		Recorder: recorder,
		Logger:   logger.Named("conference"),
		Now:      time.Now,
	}
}

// Execute applies one status callback. Events that cannot be applied return an
// error wrapping ErrEventIgnored; the caller acknowledges them anyway.
func (uc *HandleConferenceEventUseCase) Execute(ctx context.Context, in ConferenceEventInput) error {
	event := NormalizeConferenceEvent(in.Event)
	if event == "" {
		return ignored("unknown event " + in.Event)
	}
	uc.Recorder.ConferenceEvent(event)

	sessionID := ResolveSessionID(in)
	now := uc.Now()

	switch event {
	case ConferenceStart:
		if sessionID == "" || in.ConferenceSid == "" {
			return ignored("conference-start without session or conference sid")
		}
		if err := uc.Turbo.AttachConference(ctx, sessionID, in.ConferenceSid); err != nil {
			return uc.sessionError(err)
		}
		uc.Logger.Info("conference started", zap.String("session_id", sessionID), zap.String("conference_sid", in.ConferenceSid))

	case ConferenceEnd:
		if sessionID == "" {
			return ignored("conference-end without session")
		}
		if err := uc.Turbo.EndSession(ctx, sessionID, now); err != nil {
			return uc.sessionError(err)
		}
		if _, err := uc.Turbo.ReleaseRep(ctx, sessionID); err != nil {
			return repoError("REP", err)
		}
		uc.Logger.Info("conference ended", zap.String("session_id", sessionID))

	case ParticipantJoin:
		if in.CallSid == "" {
			return ignored("participant-join without call sid")
		}
		var sid *string
		if sessionID != "" {
			sid = &sessionID
		}
		if err := uc.Calls.JoinConference(ctx, in.CallSid, in.ConferenceSid, sid); err != nil {
			return repoError("CALL", err)
		}

	case ParticipantLeave:
		if in.CallSid == "" {
			return ignored("participant-leave without call sid")
		}
		status := entity.CallStatusCompleted
		if sessionID != "" {
			session, err := uc.Turbo.FindSession(ctx, sessionID)
			if err != nil && !errors.Is(err, entity.ErrNotFound) {
				return repoError("SESSION", err)
			}
			if session != nil && session.Status == entity.TurboSessionActive &&
				session.ConferenceSid != nil && *session.ConferenceSid == in.ConferenceSid {
				status = entity.CallStatusLeft
			}
		}
		if err := uc.Calls.LeaveConference(ctx, in.CallSid, status, now); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return ignored("participant-leave for unknown call")
			}
			return repoError("CALL", err)
		}
	}
	return nil
}

func (uc *HandleConferenceEventUseCase) sessionError(err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return ignored("session not found or already ended")
	}
	return repoError("SESSION", err)
}

func ignored(reason string) error {
	return &ignoredEvent{reason: reason}
}

type ignoredEvent struct {
	reason string
}

func (e *ignoredEvent) Error() string { return "conference event ignored: " + e.reason }
func (e *ignoredEvent) Unwrap() error { return ErrEventIgnored }
