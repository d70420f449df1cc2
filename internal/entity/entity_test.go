package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLead(t *testing.T) {
	lead := NewLead("  Ana ", " Lima", " Ana.Lima@Example.COM ")

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Ana", lead.FirstName)
	assert.Equal(t, "ana.lima@example.com", lead.Email)
	assert.Equal(t, LeadStatusNew, lead.Status)
	assert.Equal(t, "Ana Lima", lead.FullName())
	assert.Equal(t, "Ana", (&Lead{FirstName: "Ana"}).FullName())
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Task{Status: TaskStatusPending, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusCompleted, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusPending, DueDate: &future}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusPending}).IsOverdue(now))
}

func TestDealStages(t *testing.T) {
	assert.True(t, IsValidDealStage(DealStageNegotiation))
	assert.False(t, IsValidDealStage("won"))
	assert.True(t, IsClosedStage(DealStageClosedLost))
	assert.False(t, IsClosedStage(DealStageProposal))
}

func TestEnrollmentIsOpen(t *testing.T) {
	assert.True(t, (&Enrollment{Status: EnrollmentActive}).IsOpen())
	assert.True(t, (&Enrollment{Status: EnrollmentPaused}).IsOpen())
	assert.False(t, (&Enrollment{Status: EnrollmentCompleted}).IsOpen())
	assert.False(t, (&Enrollment{Status: EnrollmentCancelled}).IsOpen())
}

func TestPhaseDelay(t *testing.T) {
	assert.Equal(t, 36*time.Hour, FunnelPhase{DelayHours: 36}.Delay())
}

func TestPaginateItems(t *testing.T) {
	items := make([]LineItem, 21)
	for i := range items {
		items[i] = LineItem{Quantity: decimal.NewFromInt(int64(i + 1))}
	}

	pages := PaginateItems(items, 10)

	require.Len(t, pages, 3)
	assert.Len(t, pages[0].Items, 10)
	assert.Len(t, pages[1].Items, 10)
	assert.Len(t, pages[2].Items, 1)
	assert.True(t, pages[2].Items[0].Quantity.Equal(decimal.NewFromInt(21)))
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, 3, p.Of)
		assert.Equal(t, i == 2, p.IsLast)
	}
}

func TestPaginateItems_Edges(t *testing.T) {
	empty := PaginateItems(nil, 10)
	require.Len(t, empty, 1)
	assert.Empty(t, empty[0].Items)
	assert.True(t, empty[0].IsLast)

	exact := PaginateItems(make([]LineItem, 10), 10)
	require.Len(t, exact, 1)

	assert.Len(t, PaginateItems(make([]LineItem, 11), 0), 2)
}

func TestInvoiceDocumentIsLetter(t *testing.T) {
	assert.True(t, (&InvoiceDocument{Kind: InvoiceKindSellDirection}).IsLetter())
	assert.False(t, (&InvoiceDocument{Kind: InvoiceKindInvoice}).IsLetter())
	assert.True(t, IsValidInvoiceKind(InvoiceKindBuyDirection))
	assert.False(t, IsValidInvoiceKind("receipt"))
}
