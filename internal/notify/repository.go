// AngelaMos | 2026
// repository.go

package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelamos/studio-portal/internal/core"
)

type TemplateRepository interface {
	Get(ctx context.Context, key string) (*Template, error)
	Upsert(ctx context.Context, t *Template) error
}

type templateRepository struct {
	db core.DBTX
}

func NewTemplateRepository(db core.DBTX) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Get(ctx context.Context, key string) (*Template, error) {
	var t Template
	err := r.db.GetContext(ctx, &t, `
		SELECT key, subject, body, updated_at
		FROM email_templates
		WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get template: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

func (r *templateRepository) Upsert(ctx context.Context, t *Template) error {
	err := r.db.GetContext(ctx, &t.UpdatedAt, `
		INSERT INTO email_templates (key, subject, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = NOW()
		RETURNING updated_at`, t.Key, t.Subject, t.Body)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

// MemoryTemplateRepository backs the log provider in development and tests.
type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{templates: make(map[string]Template)}
}

func (r *MemoryTemplateRepository) Get(_ context.Context, key string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[key]
	if !ok {
		return nil, fmt.Errorf("get template: %w", core.ErrNotFound)
	}
	return &t, nil
}

func (r *MemoryTemplateRepository) Upsert(_ context.Context, t *Template) error {
	now := time.Now()
	t.UpdatedAt = &now
	t.IsDefault = false

	r.mu.Lock()
	r.templates[t.Key] = *t
	r.mu.Unlock()
	return nil
}
