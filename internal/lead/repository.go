// AngelaMos | 2026
// repository.go

package lead

import (
	"context"
	"fmt"

	"github.com/angelamos/studio-portal/internal/core"
)

type Repository interface {
	// Subscribe inserts the email once. created is false when it was
	// already on the list.
	Subscribe(ctx context.Context, s *Subscriber) (created bool, err error)
	CreateCalculatorLead(ctx context.Context, l *CalculatorLead) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Subscribe(ctx context.Context, s *Subscriber) (bool, error) {
	var row struct {
		Subscriber
		Inserted bool `db:"inserted"`
	}

	err := r.db.GetContext(ctx, &row, `
		INSERT INTO newsletter_subscribers (id, email, source)
		VALUES ($1, LOWER($2), $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, source, created_at, (xmax = 0) AS inserted`,
		s.ID, s.Email, s.Source)
	if err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}

	*s = row.Subscriber
	return row.Inserted, nil
}

func (r *repository) CreateCalculatorLead(ctx context.Context, l *CalculatorLead) error {
	err := r.db.GetContext(ctx, &l.CreatedAt, `
		INSERT INTO calculator_leads (id, name, email, phone, project_type, budget_range)
		VALUES ($1, $2, LOWER($3), $4, $5, $6)
		RETURNING created_at`,
		l.ID, l.Name, l.Email, l.Phone, l.ProjectType, l.BudgetRange)
	if err != nil {
		return fmt.Errorf("create calculator lead: %w", err)
	}
	return nil
}
