package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type MockLeadService struct{ mock.Mock }

func (m *MockLeadService) Create(ctx context.Context, in usecase.LeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, in)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadService) Get(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadService) Update(ctx context.Context, id string, in usecase.LeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, id, in)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockLeadService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLeadService) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	leads, _ := args.Get(0).([]*entity.Lead)
	return leads, args.Error(1)
}

func (m *MockLeadService) Capture(ctx context.Context, in usecase.LeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, in)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

type MockConferenceEvents struct{ mock.Mock }

func (m *MockConferenceEvents) Execute(ctx context.Context, in usecase.ConferenceEventInput) error {
	return m.Called(ctx, in).Error(0)
}

type MockDocumentService struct{ mock.Mock }

func (m *MockDocumentService) Upload(ctx context.Context, in usecase.UploadDocumentInput) (*entity.Document, error) {
	args := m.Called(ctx, in)
	doc, _ := args.Get(0).(*entity.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentService) RequestUploadURL(ctx context.Context, in usecase.UploadDocumentInput) (*usecase.UploadURLOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.UploadURLOutput)
	return out, args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*entity.Document, error) {
	args := m.Called(ctx, id)
	doc, _ := args.Get(0).(*entity.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error) {
	args := m.Called(ctx, filter)
	docs, _ := args.Get(0).([]*entity.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockInvoiceService struct{ mock.Mock }

func (m *MockInvoiceService) Execute(ctx context.Context, in usecase.GenerateInvoiceInput) (*usecase.GenerateInvoiceOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.GenerateInvoiceOutput)
	return out, args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	args := m.Called(ctx, id)
	inv, _ := args.Get(0).(*entity.Invoice)
	return inv, args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	args := m.Called(ctx, limit, offset)
	invoices, _ := args.Get(0).([]*entity.Invoice)
	return invoices, args.Error(1)
}

type MockTurboService struct{ mock.Mock }

func (m *MockTurboService) JoinPool(ctx context.Context, repID string) error {
	return m.Called(ctx, repID).Error(0)
}

func (m *MockTurboService) LeavePool(ctx context.Context, repID string) error {
	return m.Called(ctx, repID).Error(0)
}

func (m *MockTurboService) ListPool(ctx context.Context) ([]*entity.PooledRep, error) {
	args := m.Called(ctx)
	reps, _ := args.Get(0).([]*entity.PooledRep)
	return reps, args.Error(1)
}

func (m *MockTurboService) StartSession(ctx context.Context) (*entity.TurboSession, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*entity.TurboSession)
	return s, args.Error(1)
}

func (m *MockTurboService) GetSession(ctx context.Context, id string) (*entity.TurboSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*entity.TurboSession)
	return s, args.Error(1)
}

func (m *MockTurboService) EndSession(ctx context.Context, id string) (*entity.TurboSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*entity.TurboSession)
	return s, args.Error(1)
}

func (m *MockTurboService) ReleaseRep(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}
