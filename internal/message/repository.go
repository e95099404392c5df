// AngelaMos | 2026
// repository.go

package message

import (
	"context"
	"fmt"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/pgutil"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListByProject(ctx context.Context, projectID string) ([]Message, error)
	MarkRead(ctx context.Context, projectID, viewer string, ids []string) error
	UnreadByProject(ctx context.Context, viewer string) (map[string]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const messageColumns = `id, project_id, sender, account_id, body, read_by_client,
	read_by_admin, created_at`

// readColumn maps a party to its read flag column. Only these two values
// are ever interpolated into SQL.
func readColumn(viewer string) (string, error) {
	switch viewer {
	case RoleClient:
		return "read_by_client", nil
	case RoleAdmin:
		return "read_by_admin", nil
	default:
		return "", fmt.Errorf("unknown message party %q: %w", viewer, core.ErrInvalidInput)
	}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	err := r.db.GetContext(ctx, &m.CreatedAt, `
		INSERT INTO client_messages (id, project_id, sender, account_id, body,
			read_by_client, read_by_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		m.ID, m.ProjectID, m.Sender, m.AccountID, m.Body, m.ReadByClient, m.ReadByAdmin)
	if err != nil {
		if pgutil.IsForeignKeyViolation(err) {
			return fmt.Errorf("create message: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (r *repository) ListByProject(ctx context.Context, projectID string) ([]Message, error) {
	var msgs []Message
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT `+messageColumns+`
		FROM client_messages
		WHERE project_id = $1
		ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// MarkRead sets viewer's flag on the given messages of one project. The
// sender guard keeps a party's own messages untouched whatever ids say.
func (r *repository) MarkRead(ctx context.Context, projectID, viewer string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	col, err := readColumn(viewer)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE client_messages
		SET `+col+` = TRUE
		WHERE project_id = $1 AND sender <> $2 AND id = ANY($3)`,
		projectID, viewer, ids)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

func (r *repository) UnreadByProject(ctx context.Context, viewer string) (map[string]int, error) {
	col, err := readColumn(viewer)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ProjectID string `db:"project_id"`
		Count     int    `db:"count"`
	}
	err = r.db.SelectContext(ctx, &rows, `
		SELECT project_id, COUNT(*) AS count
		FROM client_messages
		WHERE sender <> $1 AND `+col+` = FALSE
		GROUP BY project_id`, viewer)
	if err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ProjectID] = row.Count
	}
	return counts, nil
}
