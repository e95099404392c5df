// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/notify"
	"github.com/angelamos/studio-portal/internal/progress"
)

type ClientLookup interface {
	Get(ctx context.Context, id string) (*client.Client, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, key, to, replyTo string, data any)
}

// Detail carries a project with the numbers derived from it. Admin and
// portal views read the same calculators.
type Detail struct {
	Project
	Progress  progress.Summary[Phase]
	Financial finance.Summary
}

type Service struct {
	repo      Repository
	clients   ClientLookup
	notifier  Dispatcher
	calc      *finance.Calculator
	portalURL string
	now       func() time.Time
}

func NewService(
	repo Repository,
	clients ClientLookup,
	notifier Dispatcher,
	calc *finance.Calculator,
	portalURL string,
) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		notifier:  notifier,
		calc:      calc,
		portalURL: portalURL,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusPlanning
	}

	p := &Project{
		ID:          uuid.New().String(),
		ClientID:    req.ClientID,
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		Description: trimOptional(req.Description),
		Status:      status,
		BudgetRange: req.BudgetRange,
		Timeline:    trimOptional(req.Timeline),
		StartDate:   start,
		EndDate:     end,
		Notes:       trimOptional(req.Notes),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	p, err := s.repo.GetWithPhases(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Derive(&p.Project, p.Phases), nil
}

// Derive computes progress and financials for one project from its rows.
func (s *Service) Derive(p *Project, phases []Phase) *Detail {
	return &Detail{
		Project:   *p,
		Progress:  progress.Aggregate(phases),
		Financial: s.Summarize(p),
	}
}

func (s *Service) Summarize(p *Project) finance.Summary {
	return s.calc.Summarize(p.ContractSum, p.CashReceived)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Project, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForClient(ctx context.Context, clientID string) ([]Project, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *Service) GetForClient(ctx context.Context, clientID, id string) (*Project, error) {
	return s.repo.GetForClient(ctx, clientID, id)
}

func (s *Service) Phases(ctx context.Context, projectID string) ([]Phase, error) {
	return s.repo.ListPhases(ctx, projectID)
}

func (s *Service) StatusCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Description != nil {
		p.Description = trimOptional(req.Description)
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.BudgetRange != nil {
		p.BudgetRange = req.BudgetRange
	}
	if req.Timeline != nil {
		p.Timeline = trimOptional(req.Timeline)
	}
	if req.StartDate != nil {
		p.StartDate = start
	}
	if req.EndDate != nil {
		p.EndDate = end
	}
	if req.Notes != nil {
		p.Notes = trimOptional(req.Notes)
	}

	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return nil, core.FieldErrors{"end_date": "end_date must not be before start_date"}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// UpdateFinancials is the financial form write path. Once a project has
// ledger rows its cash_received belongs to the ledger.
func (s *Service) UpdateFinancials(
	ctx context.Context,
	id string,
	req UpdateFinancialsRequest,
) (*Project, finance.Summary, error) {
	updated, err := s.repo.UpdateFinancials(ctx, id,
		func(current finance.Financials, ledgered bool) (finance.Financials, error) {
			if ledgered && req.CashReceived.Present() {
				return finance.Financials{}, core.FieldErrors{
					"cash_received": "cash_received is derived from the payment ledger for this project",
				}
			}

			next, err := finance.ParseFinancials(current, req.ContractSum, req.CashReceived)
			if err != nil {
				return finance.Financials{}, err
			}
			if err := finance.Validate(next); err != nil {
				return finance.Financials{}, err
			}
			return next, nil
		})
	if err != nil {
		return nil, finance.Summary{}, err
	}
	return updated, s.Summarize(updated), nil
}

func (s *Service) Payments(ctx context.Context, id string) ([]Payment, finance.Summary, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, finance.Summary{}, err
	}

	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, finance.Summary{}, err
	}
	return payments, s.Summarize(p), nil
}

func (s *Service) AddPayment(
	ctx context.Context,
	id string,
	req CreatePaymentRequest,
) (*Payment, finance.Summary, error) {
	amount, err := finance.ValidatePayment(req.Amount)
	if err != nil {
		return nil, finance.Summary{}, err
	}

	paidOn := s.today()
	if req.PaidOn != nil {
		d, err := parseDate("paid_on", *req.PaidOn)
		if err != nil {
			return nil, finance.Summary{}, err
		}
		paidOn = d
	}

	pay := &Payment{
		ID:          uuid.New().String(),
		ProjectID:   id,
		Amount:      amount,
		PaidOn:      paidOn,
		Description: trimOptional(req.Description),
	}

	updated, err := s.repo.AddPayment(ctx, pay, paymentCheck)
	if err != nil {
		return nil, finance.Summary{}, err
	}
	return pay, s.Summarize(updated), nil
}

// paymentCheck reports ledger overflow against the amount field the admin
// submitted.
func paymentCheck(f finance.Financials) error {
	err := finance.Validate(f)
	if err == nil {
		return nil
	}
	var fields core.FieldErrors
	if errors.As(err, &fields) {
		if msg, ok := fields["cash_received"]; ok {
			return core.FieldErrors{"amount": msg}
		}
	}
	return err
}

func (s *Service) DeletePayment(ctx context.Context, id, paymentID string) (finance.Summary, error) {
	updated, err := s.repo.DeletePayment(ctx, id, paymentID)
	if err != nil {
		return finance.Summary{}, err
	}
	return s.Summarize(updated), nil
}

func (s *Service) CreatePhase(ctx context.Context, projectID string, req CreatePhaseRequest) (*Phase, error) {
	ph := &Phase{
		ID:                uuid.New().String(),
		ProjectID:         projectID,
		Name:              strings.TrimSpace(req.Name),
		Description:       trimOptional(req.Description),
		Order:             *req.Order,
		EstimatedDuration: trimOptional(req.EstimatedDuration),
	}

	if err := s.repo.CreatePhase(ctx, ph); err != nil {
		return nil, err
	}
	return ph, nil
}

func (s *Service) UpdatePhase(
	ctx context.Context,
	projectID, phaseID string,
	req UpdatePhaseRequest,
) (*Phase, error) {
	ph, err := s.repo.GetPhase(ctx, projectID, phaseID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		ph.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		ph.Description = trimOptional(req.Description)
	}
	if req.Order != nil {
		ph.Order = *req.Order
	}
	if req.EstimatedDuration != nil {
		ph.EstimatedDuration = trimOptional(req.EstimatedDuration)
	}

	if err := s.repo.UpdatePhase(ctx, ph); err != nil {
		return nil, err
	}
	return ph, nil
}

func (s *Service) DeletePhase(ctx context.Context, projectID, phaseID string) error {
	return s.repo.DeletePhase(ctx, projectID, phaseID)
}

// SetPhaseCompleted stamps completed_date with the given date, or today,
// when the phase completes and clears it when the phase reopens.
func (s *Service) SetPhaseCompleted(
	ctx context.Context,
	projectID, phaseID string,
	req SetCompletionRequest,
) (*Phase, error) {
	completed := *req.Completed

	var date *time.Time
	if completed {
		d := s.today()
		if req.CompletedDate != nil {
			parsed, err := parseDate("completed_date", *req.CompletedDate)
			if err != nil {
				return nil, err
			}
			d = parsed
		}
		date = &d
	}

	return s.repo.SetPhaseCompleted(ctx, projectID, phaseID, completed, date)
}

// Notify emails the owning client a project update. Delivery is not
// awaited.
func (s *Service) Notify(ctx context.Context, id string, req NotifyRequest) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	c, err := s.clients.Get(ctx, p.ClientID)
	if err != nil {
		return fmt.Errorf("load project client: %w", err)
	}

	note := ""
	if req.Note != nil {
		note = strings.TrimSpace(*req.Note)
	}

	s.notifier.Dispatch(ctx, notify.TemplateProjectUpdate, c.Email, "", notify.ProjectUpdateData{
		Name:         c.FirstName,
		ProjectTitle: p.Title,
		Status:       StatusLabel(p.Status),
		Note:         note,
		PortalURL:    s.portalURL,
	})
	return nil
}

func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, core.FieldErrors{field: field + " must be a YYYY-MM-DD date"}
	}
	return t, nil
}

func parseDates(start, end *string) (*time.Time, *time.Time, error) {
	var s, e *time.Time
	if start != nil && *start != "" {
		t, err := parseDate("start_date", *start)
		if err != nil {
			return nil, nil, err
		}
		s = &t
	}
	if end != nil && *end != "" {
		t, err := parseDate("end_date", *end)
		if err != nil {
			return nil, nil, err
		}
		e = &t
	}
	if s != nil && e != nil && e.Before(*s) {
		return nil, nil, core.FieldErrors{"end_date": "end_date must not be before start_date"}
	}
	return s, e, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
