package usecase

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type MockLeadRepository struct{ mock.Mock }

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockLeadRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

type MockDealRepository struct{ mock.Mock }

func (m *MockDealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	return m.Called(ctx, deal).Error(0)
}

func (m *MockDealRepository) FindByID(ctx context.Context, id string) (*entity.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Deal), args.Error(1)
}

func (m *MockDealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	return m.Called(ctx, deal).Error(0)
}

func (m *MockDealRepository) UpdateStage(ctx context.Context, id, stage string, closedAt *time.Time) error {
	return m.Called(ctx, id, stage, closedAt).Error(0)
}

func (m *MockDealRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDealRepository) List(ctx context.Context, filter entity.DealFilter) ([]*entity.Deal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Deal), args.Error(1)
}

type MockTaskRepository struct{ mock.Mock }

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *entity.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockTaskRepository) SetStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	return m.Called(ctx, id, status, completedAt).Error(0)
}

func (m *MockTaskRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Task), args.Error(1)
}

type MockTemplateRepository struct{ mock.Mock }

func (m *MockTemplateRepository) Create(ctx context.Context, tpl *entity.EmailTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Update(ctx context.Context, tpl *entity.EmailTemplate) error {
	return m.Called(ctx, tpl).Error(0)
}

func (m *MockTemplateRepository) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockTemplateRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context, filter entity.TemplateFilter) ([]*entity.EmailTemplate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) IsUsedByActiveFunnel(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockFunnelRepository struct{ mock.Mock }

func (m *MockFunnelRepository) Create(ctx context.Context, funnel *entity.EmailFunnel) error {
	return m.Called(ctx, funnel).Error(0)
}

func (m *MockFunnelRepository) FindByID(ctx context.Context, id string) (*entity.EmailFunnel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailFunnel), args.Error(1)
}

func (m *MockFunnelRepository) Update(ctx context.Context, funnel *entity.EmailFunnel) error {
	return m.Called(ctx, funnel).Error(0)
}

func (m *MockFunnelRepository) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockFunnelRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFunnelRepository) List(ctx context.Context) ([]*entity.EmailFunnel, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.EmailFunnel), args.Error(1)
}

func (m *MockFunnelRepository) AddPhase(ctx context.Context, phase *entity.FunnelPhase) error {
	return m.Called(ctx, phase).Error(0)
}

func (m *MockFunnelRepository) UpdatePhase(ctx context.Context, phase *entity.FunnelPhase) error {
	return m.Called(ctx, phase).Error(0)
}

func (m *MockFunnelRepository) DeletePhase(ctx context.Context, funnelID, phaseID string) error {
	return m.Called(ctx, funnelID, phaseID).Error(0)
}

func (m *MockFunnelRepository) ReorderPhases(ctx context.Context, funnelID string, phaseIDs []string) error {
	return m.Called(ctx, funnelID, phaseIDs).Error(0)
}

type MockEnrollmentRepository struct{ mock.Mock }

func (m *MockEnrollmentRepository) Create(ctx context.Context, e *entity.Enrollment) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEnrollmentRepository) FindByID(ctx context.Context, id string) (*entity.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) ListByFunnel(ctx context.Context, funnelID string) ([]*entity.Enrollment, error) {
	args := m.Called(ctx, funnelID)
	return args.Get(0).([]*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) Update(ctx context.Context, e *entity.Enrollment) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEnrollmentRepository) Reschedule(ctx context.Context, id string, at time.Time, lastError string) error {
	return m.Called(ctx, id, at, lastError).Error(0)
}

func (m *MockEnrollmentRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.Enrollment, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]*entity.Enrollment), args.Error(1)
}

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Document), args.Error(1)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockInvoiceRepository struct{ mock.Mock }

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id string) (*entity.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*entity.Invoice), args.Error(1)
}

type MockTurboRepository struct{ mock.Mock }

func (m *MockTurboRepository) JoinPool(ctx context.Context, repID string) error {
	return m.Called(ctx, repID).Error(0)
}

func (m *MockTurboRepository) LeavePool(ctx context.Context, repID string) error {
	return m.Called(ctx, repID).Error(0)
}

func (m *MockTurboRepository) ListPool(ctx context.Context) ([]*entity.PooledRep, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entity.PooledRep), args.Error(1)
}

func (m *MockTurboRepository) StartSession(ctx context.Context, session *entity.TurboSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockTurboRepository) FindSession(ctx context.Context, id string) (*entity.TurboSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TurboSession), args.Error(1)
}

func (m *MockTurboRepository) AttachConference(ctx context.Context, sessionID, conferenceSid string) error {
	return m.Called(ctx, sessionID, conferenceSid).Error(0)
}

func (m *MockTurboRepository) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	return m.Called(ctx, sessionID, endedAt).Error(0)
}

func (m *MockTurboRepository) ReleaseRep(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTurboRepository) ExpireWaiting(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]string), args.Error(1)
}

type MockCallRepository struct{ mock.Mock }

func (m *MockCallRepository) JoinConference(ctx context.Context, callSid, conferenceSid string, sessionID *string) error {
	return m.Called(ctx, callSid, conferenceSid, sessionID).Error(0)
}

func (m *MockCallRepository) LeaveConference(ctx context.Context, callSid, status string, at time.Time) error {
	return m.Called(ctx, callSid, status, at).Error(0)
}

type MockDashboardRepository struct{ mock.Mock }

func (m *MockDashboardRepository) StageSummaries(ctx context.Context) ([]entity.StageSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.StageSummary), args.Error(1)
}

func (m *MockDashboardRepository) LeadsByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockDashboardRepository) TaskCounts(ctx context.Context, now time.Time) (int, int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockDashboardRepository) ActiveEnrollments(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardRepository) ActiveSessions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockFunnelQueue struct{ mock.Mock }

func (m *MockFunnelQueue) PublishFunnelSend(ctx context.Context, payload FunnelSendPayload) error {
	return m.Called(ctx, payload).Error(0)
}

type MockEmailSender struct{ mock.Mock }

func (m *MockEmailSender) Send(ctx context.Context, msg OutgoingEmail) error {
	return m.Called(ctx, msg).Error(0)
}

type MockRenderer struct{ mock.Mock }

func (m *MockRenderer) Render(tpl *entity.EmailTemplate, vars map[string]string) (string, string, error) {
	args := m.Called(tpl, vars)
	return args.String(0), args.String(1), args.Error(2)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) PresignGet(ctx context.Context, key, filename string) (string, error) {
	args := m.Called(ctx, key, filename)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

type MockStatsCache struct{ mock.Mock }

func (m *MockStatsCache) GetStats(ctx context.Context) (*entity.DashboardStats, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.DashboardStats), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) SetStats(ctx context.Context, stats *entity.DashboardStats) error {
	return m.Called(ctx, stats).Error(0)
}

func (m *MockStatsCache) InvalidateStats(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPDFRenderer struct{ mock.Mock }

func (m *MockPDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPDFRenderer) CountPages(pdf []byte) (int, error) {
	args := m.Called(pdf)
	return args.Int(0), args.Error(1)
}

type MockInvoiceTemplate struct{ mock.Mock }

func (m *MockInvoiceTemplate) RenderHTML(doc *entity.InvoiceDocument) (string, error) {
	args := m.Called(doc)
	return args.String(0), args.Error(1)
}

// countingRecorder tallies business events for assertions.
type countingRecorder struct {
	funnel     map[string]int
	conference map[string]int
	documents  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		funnel:     map[string]int{},
		conference: map[string]int{},
		documents:  map[string]int{},
	}
}

func (r *countingRecorder) FunnelEmail(status string)     { r.funnel[status]++ }
func (r *countingRecorder) ConferenceEvent(event string)  { r.conference[event]++ }
func (r *countingRecorder) DocumentGenerated(kind string) { r.documents[kind]++ }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
