// AngelaMos | 2026
// repository.go

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/pgutil"
)

type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]Client, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const clientColumns = `id, first_name, last_name, email, company, phone, tier, created_at, updated_at`

func (r *repository) Create(ctx context.Context, c *Client) error {
	err := r.db.GetContext(ctx, c, `
		INSERT INTO clients (id, first_name, last_name, email, company, phone, tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		c.ID, c.FirstName, c.LastName, c.Email, c.Company, c.Phone, c.Tier)
	if err != nil {
		if pgutil.IsDuplicateKey(err) {
			return fmt.Errorf("create client: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Client, error) {
	return r.getOne(ctx, "get client", `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

// GetByEmail matches case-insensitively; emails are stored lower-cased.
func (r *repository) GetByEmail(ctx context.Context, email string) (*Client, error) {
	return r.getOne(ctx, "get client by email",
		`SELECT `+clientColumns+` FROM clients WHERE email = LOWER($1)`, email)
}

func (r *repository) getOne(ctx context.Context, op, query string, arg any) (*Client, error) {
	var c Client
	err := r.db.GetContext(ctx, &c, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Client) error {
	err := r.db.GetContext(ctx, &c.UpdatedAt, `
		UPDATE clients
		SET first_name = $2, last_name = $3, email = $4, company = $5,
			phone = $6, tier = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Company, c.Phone, c.Tier)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update client: %w", core.ErrNotFound)
	case pgutil.IsDuplicateKey(err):
		return fmt.Errorf("update client: %w", core.ErrDuplicateKey)
	case err != nil:
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// Delete removes the client; projects, phases, documents and messages go
// with it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return pgutil.RequireRows("delete client", result)
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Client, int, error) {
	params.Normalize()

	where := pgutil.NewWhere()
	if params.Search != "" {
		where.Add(`(email ILIKE $? OR first_name ILIKE $? OR last_name ILIKE $?
			OR company ILIKE $?)`, pgutil.Contains(params.Search))
	}
	if params.Tier != "" {
		where.Add("tier = $?", params.Tier)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM clients WHERE "+where.SQL(), where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	limit, offset := where.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`SELECT %s FROM clients
		WHERE %s
		ORDER BY last_name, first_name, id
		LIMIT %s OFFSET %s`, clientColumns, where.SQL(), limit, offset)

	var clients []Client
	if err := r.db.SelectContext(ctx, &clients, query, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return clients, total, nil
}
