// AngelaMos | 2026
// dto.go

package project

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/progress"
)

const dateLayout = "2006-01-02"

type CreateProjectRequest struct {
	ClientID    string  `json:"client_id"    validate:"required,uuid"`
	Title       string  `json:"title"        validate:"required,max=200"`
	Type        string  `json:"project_type" validate:"required,oneof=residential commercial renovation interior"`
	Description *string `json:"description"  validate:"omitempty,max=5000"`
	Status      string  `json:"status"       validate:"omitempty,oneof=planning in_progress review completed on_hold cancelled"`
	BudgetRange *string `json:"budget_range" validate:"omitempty,oneof=under_250k 250k_500k 500k_1m 1m_plus"`
	Timeline    *string `json:"timeline"     validate:"omitempty,max=200"`
	StartDate   *string `json:"start_date"   validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"     validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"        validate:"omitempty,max=5000"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"        validate:"omitempty,min=1,max=200"`
	Type        *string `json:"project_type" validate:"omitempty,oneof=residential commercial renovation interior"`
	Description *string `json:"description"  validate:"omitempty,max=5000"`
	Status      *string `json:"status"       validate:"omitempty,oneof=planning in_progress review completed on_hold cancelled"`
	BudgetRange *string `json:"budget_range" validate:"omitempty,oneof=under_250k 250k_500k 500k_1m 1m_plus"`
	Timeline    *string `json:"timeline"     validate:"omitempty,max=200"`
	StartDate   *string `json:"start_date"   validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"     validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"        validate:"omitempty,max=5000"`
}

// UpdateFinancialsRequest leaves a field untouched when it is omitted and
// clears it when it is null.
type UpdateFinancialsRequest struct {
	ContractSum  finance.AmountInput `json:"contract_sum"`
	CashReceived finance.AmountInput `json:"cash_received"`
}

type CreatePaymentRequest struct {
	Amount      finance.AmountInput `json:"amount"`
	PaidOn      *string             `json:"paid_on"     validate:"omitempty,datetime=2006-01-02"`
	Description *string             `json:"description" validate:"omitempty,max=500"`
}

type CreatePhaseRequest struct {
	Name              string  `json:"phase_name"         validate:"required,max=200"`
	Description       *string `json:"phase_description"  validate:"omitempty,max=2000"`
	Order             *int    `json:"phase_order"        validate:"required,min=0"`
	EstimatedDuration *string `json:"estimated_duration" validate:"omitempty,max=100"`
}

type UpdatePhaseRequest struct {
	Name              *string `json:"phase_name"         validate:"omitempty,min=1,max=200"`
	Description       *string `json:"phase_description"  validate:"omitempty,max=2000"`
	Order             *int    `json:"phase_order"        validate:"omitempty,min=0"`
	EstimatedDuration *string `json:"estimated_duration" validate:"omitempty,max=100"`
}

type SetCompletionRequest struct {
	Completed     *bool   `json:"is_completed"   validate:"required"`
	CompletedDate *string `json:"completed_date" validate:"omitempty,datetime=2006-01-02"`
}

type NotifyRequest struct {
	Note *string `json:"note" validate:"omitempty,max=2000"`
}

type ListParams struct {
	Page     int
	PageSize int
	ClientID string
	Status   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ProjectResponse struct {
	ID           string              `json:"id"`
	ClientID     string              `json:"client_id"`
	Title        string              `json:"title"`
	Type         string              `json:"project_type"`
	Description  *string             `json:"description"`
	Status       string              `json:"status"`
	StatusLabel  string              `json:"status_label"`
	BudgetRange  *string             `json:"budget_range"`
	Timeline     *string             `json:"timeline"`
	StartDate    *string             `json:"start_date"`
	EndDate      *string             `json:"end_date"`
	Notes        *string             `json:"notes"`
	ContractSum  decimal.NullDecimal `json:"contract_sum"`
	CashReceived decimal.NullDecimal `json:"cash_received"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type PhaseResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"phase_name"`
	Description       *string `json:"phase_description"`
	Order             int     `json:"phase_order"`
	IsCompleted       bool    `json:"is_completed"`
	CompletedDate     *string `json:"completed_date"`
	EstimatedDuration *string `json:"estimated_duration"`
}

type ProgressResponse struct {
	CompletedCount  int            `json:"completed_count"`
	TotalCount      int            `json:"total_count"`
	PercentComplete int            `json:"percent_complete"`
	CurrentPhase    *PhaseResponse `json:"current_phase"`
}

type DetailResponse struct {
	ProjectResponse
	Phases    []PhaseResponse  `json:"phases"`
	Progress  ProgressResponse `json:"progress"`
	Financial finance.Summary  `json:"financial"`
}

type FinancialsResponse struct {
	Project   ProjectResponse `json:"project"`
	Financial finance.Summary `json:"financial"`
}

type PaymentResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidOn      string          `json:"paid_on"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	Financial finance.Summary   `json:"financial"`
}

func ToResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		ClientID:     p.ClientID,
		Title:        p.Title,
		Type:         p.Type,
		Description:  p.Description,
		Status:       p.Status,
		StatusLabel:  StatusLabel(p.Status),
		BudgetRange:  p.BudgetRange,
		Timeline:     p.Timeline,
		StartDate:    formatDate(p.StartDate),
		EndDate:      formatDate(p.EndDate),
		Notes:        p.Notes,
		ContractSum:  p.ContractSum,
		CashReceived: p.CashReceived,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToResponseList(projects []Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, ToResponse(&projects[i]))
	}
	return out
}

func ToPhaseResponse(p *Phase) PhaseResponse {
	return PhaseResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Order:             p.Order,
		IsCompleted:       p.IsCompleted,
		CompletedDate:     formatDate(p.CompletedDate),
		EstimatedDuration: p.EstimatedDuration,
	}
}

// ToPhaseResponseList keeps the order it is given.
func ToPhaseResponseList(phases []Phase) []PhaseResponse {
	out := make([]PhaseResponse, 0, len(phases))
	for i := range phases {
		out = append(out, ToPhaseResponse(&phases[i]))
	}
	return out
}

func ToProgressResponse(s progress.Summary[Phase]) ProgressResponse {
	resp := ProgressResponse{
		CompletedCount:  s.CompletedCount,
		TotalCount:      s.TotalCount,
		PercentComplete: s.PercentComplete,
	}
	if s.CurrentPhase != nil {
		current := ToPhaseResponse(s.CurrentPhase)
		resp.CurrentPhase = &current
	}
	return resp
}

func ToDetailResponse(d *Detail) DetailResponse {
	return DetailResponse{
		ProjectResponse: ToResponse(&d.Project),
		Phases:          ToPhaseResponseList(d.Progress.Ordered),
		Progress:        ToProgressResponse(d.Progress),
		Financial:       d.Financial,
	}
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Amount:      p.Amount,
		PaidOn:      p.PaidOn.Format(dateLayout),
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func ToPaymentResponseList(payments []Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, ToPaymentResponse(&payments[i]))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
