// AngelaMos | 2026
// entity.go

package project

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelamos/studio-portal/internal/finance"
)

const (
	TypeResidential = "residential"
	TypeCommercial  = "commercial"
	TypeRenovation  = "renovation"
	TypeInterior    = "interior"
)

const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusCompleted  = "completed"
	StatusOnHold     = "on_hold"
	StatusCancelled  = "cancelled"
)

// Statuses lists every status in lifecycle order. Transitions between them
// are not enforced.
var Statuses = []string{
	StatusPlanning,
	StatusInProgress,
	StatusReview,
	StatusCompleted,
	StatusOnHold,
	StatusCancelled,
}

var statusLabels = map[string]string{
	StatusPlanning:   "Planning",
	StatusInProgress: "In Progress",
	StatusReview:     "Review",
	StatusCompleted:  "Completed",
	StatusOnHold:     "On Hold",
	StatusCancelled:  "Cancelled",
}

func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

const (
	BudgetUnder250k = "under_250k"
	Budget250kTo500 = "250k_500k"
	Budget500kTo1m  = "500k_1m"
	Budget1mPlus    = "1m_plus"
)

type Project struct {
	ID           string              `db:"id"`
	ClientID     string              `db:"client_id"`
	Title        string              `db:"title"`
	Type         string              `db:"project_type"`
	Description  *string             `db:"description"`
	Status       string              `db:"status"`
	BudgetRange  *string             `db:"budget_range"`
	Timeline     *string             `db:"timeline"`
	StartDate    *time.Time          `db:"start_date"`
	EndDate      *time.Time          `db:"end_date"`
	Notes        *string             `db:"notes"`
	ContractSum  decimal.NullDecimal `db:"contract_sum"`
	CashReceived decimal.NullDecimal `db:"cash_received"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

func (p *Project) Financials() finance.Financials {
	return finance.Financials{
		ContractSum:  p.ContractSum,
		CashReceived: p.CashReceived,
	}
}

type Phase struct {
	ID                string     `db:"id"`
	ProjectID         string     `db:"project_id"`
	Name              string     `db:"phase_name"`
	Description       *string    `db:"phase_description"`
	Order             int        `db:"phase_order"`
	IsCompleted       bool       `db:"is_completed"`
	CompletedDate     *time.Time `db:"completed_date"`
	EstimatedDuration *string    `db:"estimated_duration"`
	CreatedAt         time.Time  `db:"created_at"`
}

func (p Phase) PhaseOrder() int        { return p.Order }
func (p Phase) Completed() bool        { return p.IsCompleted }
func (p Phase) CreatedTime() time.Time { return p.CreatedAt }
func (p Phase) Key() string            { return p.ID }

// WithPhases is a project loaded together with its timeline.
type WithPhases struct {
	Project
	Phases []Phase
}

type Payment struct {
	ID          string          `db:"id"`
	ProjectID   string          `db:"project_id"`
	Amount      decimal.Decimal `db:"amount"`
	PaidOn      time.Time       `db:"paid_on"`
	Description *string         `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}
