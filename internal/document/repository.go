// AngelaMos | 2026
// repository.go

package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/pgutil"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	GetForClient(ctx context.Context, clientID, id string) (*Document, error)
	ListForClient(ctx context.Context, clientID string, projectID *string) ([]Document, error)
	List(ctx context.Context, params ListParams) ([]Document, int, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const documentColumns = `id, client_id, project_id, title, description, category,
	tags, file_path, file_name, file_size, file_type, created_at`

func (r *repository) Create(ctx context.Context, d *Document) error {
	err := r.db.GetContext(ctx, &d.CreatedAt, `
		INSERT INTO client_documents (id, client_id, project_id, title, description,
			category, tags, file_path, file_name, file_size, file_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		d.ID, d.ClientID, d.ProjectID, d.Title, d.Description, d.Category,
		d.Tags, d.FilePath, d.FileName, d.FileSize, d.FileType)
	if err != nil {
		if pgutil.IsForeignKeyViolation(err) {
			return fmt.Errorf("create document: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Document, error) {
	return r.getOne(ctx, "get document",
		`SELECT `+documentColumns+` FROM client_documents WHERE id = $1`, id)
}

func (r *repository) GetForClient(ctx context.Context, clientID, id string) (*Document, error) {
	return r.getOne(ctx, "get client document",
		`SELECT `+documentColumns+` FROM client_documents WHERE id = $1 AND client_id = $2`,
		id, clientID)
}

func (r *repository) getOne(ctx context.Context, op, query string, args ...any) (*Document, error) {
	var d Document
	err := r.db.GetContext(ctx, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

// ListForClient returns the client's documents. With a project it returns
// that project's documents plus the client-level ones.
func (r *repository) ListForClient(
	ctx context.Context,
	clientID string,
	projectID *string,
) ([]Document, error) {
	where := pgutil.NewWhere()
	where.Add("client_id = $?", clientID)
	if projectID != nil {
		where.Add("(project_id IS NULL OR project_id = $?)", *projectID)
	}

	var docs []Document
	err := r.db.SelectContext(ctx, &docs, `
		SELECT `+documentColumns+`
		FROM client_documents
		WHERE `+where.SQL()+`
		ORDER BY created_at DESC, id`, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list client documents: %w", err)
	}
	return docs, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Document, int, error) {
	params.Normalize()

	where := pgutil.NewWhere()
	if params.ClientID != "" {
		where.Add("client_id = $?", params.ClientID)
	}
	if params.ProjectID != "" {
		where.Add("project_id = $?", params.ProjectID)
	}
	if params.Category != "" {
		where.Add("category = $?", params.Category)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM client_documents WHERE "+where.SQL(), where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	limit, offset := where.Page(params.PageSize, params.Offset())
	query := fmt.Sprintf(`SELECT %s FROM client_documents
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT %s OFFSET %s`, documentColumns, where.SQL(), limit, offset)

	var docs []Document
	if err := r.db.SelectContext(ctx, &docs, query, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return pgutil.RequireRows("delete document", result)
}
