// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/pgutil"
)

type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	GetForClient(ctx context.Context, clientID, id string) (*Project, error)
	GetWithPhases(ctx context.Context, id string) (*WithPhases, error)
	ListByClient(ctx context.Context, clientID string) ([]Project, error)
	List(ctx context.Context, params ListParams) ([]Project, int, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)

	UpdateFinancials(ctx context.Context, id string, edit FinancialsEdit) (*Project, error)

	ListPhases(ctx context.Context, projectID string) ([]Phase, error)
	GetPhase(ctx context.Context, projectID, phaseID string) (*Phase, error)
	CreatePhase(ctx context.Context, ph *Phase) error
	UpdatePhase(ctx context.Context, ph *Phase) error
	DeletePhase(ctx context.Context, projectID, phaseID string) error
	SetPhaseCompleted(
		ctx context.Context,
		projectID, phaseID string,
		completed bool,
		date *time.Time,
	) (*Phase, error)

	ListPayments(ctx context.Context, projectID string) ([]Payment, error)
	AddPayment(
		ctx context.Context,
		pay *Payment,
		check func(finance.Financials) error,
	) (*Project, error)
	DeletePayment(ctx context.Context, projectID, paymentID string) (*Project, error)
}

// FinancialsEdit derives new financials from the locked project row.
// ledgered reports whether the project has payment records, in which case
// the stored cash_received is kept as it is.
type FinancialsEdit func(current finance.Financials, ledgered bool) (finance.Financials, error)

// openingBalanceNote labels the ledger row that carries cash entered on the
// financial form before the first recorded payment.
const openingBalanceNote = "Opening balance"

type repository struct {
	db core.DBTX
	tx core.Transactor
}

func NewRepository(db core.DBTX, tx core.Transactor) Repository {
	return &repository{db: db, tx: tx}
}

const projectColumns = `id, client_id, title, project_type, description, status,
	budget_range, timeline, start_date, end_date, notes, contract_sum,
	cash_received, created_at, updated_at`

const phaseColumns = `id, project_id, phase_name, phase_description, phase_order,
	is_completed, completed_date, estimated_duration, created_at`

const paymentColumns = `id, project_id, amount, paid_on, description, created_at`

func (r *repository) Create(ctx context.Context, p *Project) error {
	err := r.db.GetContext(ctx, p, `
		INSERT INTO projects (id, client_id, title, project_type, description,
			status, budget_range, timeline, start_date, end_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+projectColumns,
		p.ID, p.ClientID, p.Title, p.Type, p.Description, p.Status,
		p.BudgetRange, p.Timeline, p.StartDate, p.EndDate, p.Notes)
	if err != nil {
		if pgutil.IsForeignKeyViolation(err) {
			return core.FieldErrors{"client_id": "client does not exist"}
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	return getProject(ctx, r.db, "get project",
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

// GetForClient only finds the project when clientID owns it.
func (r *repository) GetForClient(ctx context.Context, clientID, id string) (*Project, error) {
	return getProject(ctx, r.db, "get client project",
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND client_id = $2`,
		id, clientID)
}

func getProject(ctx context.Context, db core.DBTX, op, query string, args ...any) (*Project, error) {
	var p Project
	err := db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (r *repository) GetWithPhases(ctx context.Context, id string) (*WithPhases, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	phases, err := r.ListPhases(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithPhases{Project: *p, Phases: phases}, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID string) ([]Project, error) {
	var projects []Project
	err := r.db.SelectContext(ctx, &projects, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE client_id = $1
		ORDER BY created_at, id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client projects: %w", err)
	}
	return projects, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Project, int, error) {
	params.Normalize()

	where := pgutil.NewWhere()
	if params.ClientID != "" {
		where.Add("client_id = $?", params.ClientID)
	}
	if params.Status != "" {
		where.Add("status = $?", params.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM projects WHERE "+where.SQL(), where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	limit, offset := where.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`SELECT %s FROM projects
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT %s OFFSET %s`, projectColumns, where.SQL(), limit, offset)

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	err := r.db.GetContext(ctx, &p.UpdatedAt, `
		UPDATE projects
		SET title = $2, project_type = $3, description = $4, status = $5,
			budget_range = $6, timeline = $7, start_date = $8, end_date = $9,
			notes = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Title, p.Type, p.Description, p.Status, p.BudgetRange,
		p.Timeline, p.StartDate, p.EndDate, p.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Delete cascades to phases, payments, messages and project documents.
func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return pgutil.RequireRows("delete project", result)
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM projects GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count projects by status: %w", err)
	}

	counts := make(map[string]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) UpdateFinancials(
	ctx context.Context,
	id string,
	edit FinancialsEdit,
) (*Project, error) {
	var updated *Project
	err := r.tx.InTx(ctx, func(tx core.DBTX) error {
		current, err := lockProject(ctx, tx, id)
		if err != nil {
			return err
		}
		ledgered, err := hasPayments(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := edit(current, ledgered)
		if err != nil {
			return err
		}

		if ledgered {
			updated, err = getProject(ctx, tx, "update project financials", `
				UPDATE projects
				SET contract_sum = $2, updated_at = NOW()
				WHERE id = $1
				RETURNING `+projectColumns,
				id, next.ContractSum)
			return err
		}

		updated, err = getProject(ctx, tx, "update project financials", `
			UPDATE projects
			SET contract_sum = $2, cash_received = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING `+projectColumns,
			id, next.ContractSum, next.CashReceived)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) ListPhases(ctx context.Context, projectID string) ([]Phase, error) {
	var phases []Phase
	err := r.db.SelectContext(ctx, &phases, `
		SELECT `+phaseColumns+`
		FROM project_phases
		WHERE project_id = $1
		ORDER BY phase_order, created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	return phases, nil
}

func (r *repository) GetPhase(ctx context.Context, projectID, phaseID string) (*Phase, error) {
	var ph Phase
	err := r.db.GetContext(ctx, &ph, `
		SELECT `+phaseColumns+`
		FROM project_phases
		WHERE id = $1 AND project_id = $2`, phaseID, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get phase: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get phase: %w", err)
	}
	return &ph, nil
}

func (r *repository) CreatePhase(ctx context.Context, ph *Phase) error {
	err := r.db.GetContext(ctx, ph, `
		INSERT INTO project_phases (id, project_id, phase_name, phase_description,
			phase_order, estimated_duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+phaseColumns,
		ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.Order, ph.EstimatedDuration)
	if err != nil {
		if pgutil.IsForeignKeyViolation(err) {
			return fmt.Errorf("create phase: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create phase: %w", err)
	}
	return nil
}

func (r *repository) UpdatePhase(ctx context.Context, ph *Phase) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE project_phases
		SET phase_name = $3, phase_description = $4, phase_order = $5,
			estimated_duration = $6
		WHERE id = $1 AND project_id = $2`,
		ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.Order, ph.EstimatedDuration)
	if err != nil {
		return fmt.Errorf("update phase: %w", err)
	}
	return pgutil.RequireRows("update phase", result)
}

func (r *repository) DeletePhase(ctx context.Context, projectID, phaseID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_phases WHERE id = $1 AND project_id = $2`, phaseID, projectID)
	if err != nil {
		return fmt.Errorf("delete phase: %w", err)
	}
	return pgutil.RequireRows("delete phase", result)
}

func (r *repository) SetPhaseCompleted(
	ctx context.Context,
	projectID, phaseID string,
	completed bool,
	date *time.Time,
) (*Phase, error) {
	var ph Phase
	err := r.db.GetContext(ctx, &ph, `
		UPDATE project_phases
		SET is_completed = $3, completed_date = $4
		WHERE id = $1 AND project_id = $2
		RETURNING `+phaseColumns,
		phaseID, projectID, completed, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set phase completed: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set phase completed: %w", err)
	}
	return &ph, nil
}

func (r *repository) ListPayments(ctx context.Context, projectID string) ([]Payment, error) {
	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+`
		FROM payment_records
		WHERE project_id = $1
		ORDER BY paid_on, created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// AddPayment inserts the record and recomputes cash_received from the
// ledger in one transaction. Cash entered on the financial form before the
// first payment is carried into the ledger as an opening balance row. check
// sees the new totals before commit and aborts the insert by returning an
// error.
func (r *repository) AddPayment(
	ctx context.Context,
	pay *Payment,
	check func(finance.Financials) error,
) (*Project, error) {
	var updated *Project
	err := r.tx.InTx(ctx, func(tx core.DBTX) error {
		current, err := lockProject(ctx, tx, pay.ProjectID)
		if err != nil {
			return err
		}

		if err := carryOpeningBalance(ctx, tx, pay, current.CashReceived); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &pay.CreatedAt, `
			INSERT INTO payment_records (id, project_id, amount, paid_on, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			pay.ID, pay.ProjectID, pay.Amount, pay.PaidOn, pay.Description); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		updated, err = recomputeCash(ctx, tx, pay.ProjectID, current.ContractSum, check)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) DeletePayment(ctx context.Context, projectID, paymentID string) (*Project, error) {
	var updated *Project
	err := r.tx.InTx(ctx, func(tx core.DBTX) error {
		current, err := lockProject(ctx, tx, projectID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM payment_records WHERE id = $1 AND project_id = $2`,
			paymentID, projectID)
		if err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		if err := pgutil.RequireRows("delete payment", result); err != nil {
			return err
		}

		updated, err = recomputeCash(ctx, tx, projectID, current.ContractSum, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func lockProject(ctx context.Context, tx core.DBTX, id string) (finance.Financials, error) {
	var row struct {
		ContractSum  decimal.NullDecimal `db:"contract_sum"`
		CashReceived decimal.NullDecimal `db:"cash_received"`
	}
	err := tx.GetContext(ctx, &row,
		`SELECT contract_sum, cash_received FROM projects WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Financials{}, fmt.Errorf("lock project: %w", core.ErrNotFound)
	}
	if err != nil {
		return finance.Financials{}, fmt.Errorf("lock project: %w", err)
	}
	return finance.Financials{ContractSum: row.ContractSum, CashReceived: row.CashReceived}, nil
}

func hasPayments(ctx context.Context, tx core.DBTX, projectID string) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM payment_records WHERE project_id = $1)`,
		projectID); err != nil {
		return false, fmt.Errorf("check payments: %w", err)
	}
	return exists, nil
}

// carryOpeningBalance must run with the project row locked.
func carryOpeningBalance(
	ctx context.Context,
	tx core.DBTX,
	pay *Payment,
	cash decimal.NullDecimal,
) error {
	if !cash.Valid || !cash.Decimal.IsPositive() {
		return nil
	}
	ledgered, err := hasPayments(ctx, tx, pay.ProjectID)
	if err != nil || ledgered {
		return err
	}

	note := openingBalanceNote
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment_records (id, project_id, amount, paid_on, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW() - INTERVAL '1 millisecond')`,
		uuid.New().String(), pay.ProjectID, cash.Decimal, pay.PaidOn, &note); err != nil {
		return fmt.Errorf("insert opening balance: %w", err)
	}
	return nil
}

func recomputeCash(
	ctx context.Context,
	tx core.DBTX,
	projectID string,
	contract decimal.NullDecimal,
	check func(finance.Financials) error,
) (*Project, error) {
	var total decimal.Decimal
	if err := tx.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM payment_records WHERE project_id = $1`,
		projectID); err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	next := finance.Financials{
		ContractSum:  contract,
		CashReceived: decimal.NullDecimal{Decimal: total, Valid: true},
	}
	if check != nil {
		if err := check(next); err != nil {
			return nil, err
		}
	}

	return getProject(ctx, tx, "update cash received", `
		UPDATE projects
		SET cash_received = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		projectID, next.CashReceived)
}
