package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DealStageProspecting   = "prospecting"
	DealStageQualification = "qualification"
	DealStageProposal      = "proposal"
	DealStageNegotiation   = "negotiation"
	DealStageClosedWon     = "closed_won"
	DealStageClosedLost    = "closed_lost"
)

// DealStages lists the pipeline in display order.
var DealStages = []string{
	DealStageProspecting,
	DealStageQualification,
	DealStageProposal,
	DealStageNegotiation,
	DealStageClosedWon,
	DealStageClosedLost,
}

type Deal struct {
	ID                string          `json:"id"`
	LeadID            string          `json:"lead_id"`
	LeadName          string          `json:"lead_name,omitempty"`
	Title             string          `json:"title"`
	Value             decimal.Decimal `json:"value"`
	Currency          string          `json:"currency"`
	Stage             string          `json:"stage"`
	Probability       int             `json:"probability"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date,omitempty"`
	OwnerID           string          `json:"owner_id,omitempty"`
	IsDeleted         bool            `json:"-"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func IsValidDealStage(stage string) bool {
	for _, s := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}

func IsClosedStage(stage string) bool {
	return stage == DealStageClosedWon || stage == DealStageClosedLost
}

type DealFilter struct {
	Stage   string
	OwnerID string
	LeadID  string
	Limit   int
	Offset  int
}

type DealRepositoryInterface interface {
	Create(ctx context.Context, deal *Deal) error
	FindByID(ctx context.Context, id string) (*Deal, error)
	Update(ctx context.Context, deal *Deal) error
	UpdateStage(ctx context.Context, id, stage string, closedAt *time.Time) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter DealFilter) ([]*Deal, error)
}
