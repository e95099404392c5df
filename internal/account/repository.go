// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/pgutil"
)

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdateRole(ctx context.Context, id, role string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]Account, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const accountColumns = `id, email, password_hash, name, role, token_version,
		created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING token_version, created_at, updated_at`

	err := r.db.GetContext(ctx, a, query,
		a.ID, a.Email, a.PasswordHash, a.Name, a.Role)
	if err != nil {
		if pgutil.IsDuplicateKey(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL`

	var a Account
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1 AND deleted_at IS NULL`

	var a Account
	err := r.db.GetContext(ctx, &a, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, "update account role", `
		UPDATE accounts
		SET role = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, role)
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "update password", `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.exec(ctx, "increment token version", `
		UPDATE accounts
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete account", `
		UPDATE accounts
		SET deleted_at = NOW(), updated_at = NOW(), token_version = token_version + 1
		WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return pgutil.RequireRows(op, result)
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Account, int, error) {
	params.Normalize()

	where := pgutil.NewWhere("deleted_at IS NULL")
	if params.Search != "" {
		where.Add("(email ILIKE $? OR name ILIKE $?)", pgutil.Contains(params.Search))
	}
	if params.Role != "" {
		where.Add("role = $?", params.Role)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM accounts WHERE " + where.SQL()
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	limit, offset := where.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`SELECT %s
		FROM accounts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`,
		strings.TrimSpace(accountColumns), where.SQL(), limit, offset)

	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, query, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, total, nil
}
