// AngelaMos | 2026
// service.go

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/metrics"
)

const sendTimeout = 10 * time.Second

// Notifier renders stored templates and hands them to a Sender.
type Notifier struct {
	sender    Sender
	templates TemplateRepository
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewNotifier(sender Sender, templates TemplateRepository, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, templates: templates, logger: logger}
}

// Template returns the stored template for key, or the built-in default.
func (n *Notifier) Template(ctx context.Context, key string) (*Template, error) {
	if !KnownTemplate(key) {
		return nil, fmt.Errorf("template %q: %w", key, core.ErrNotFound)
	}

	t, err := n.templates.Get(ctx, key)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	def, _ := DefaultTemplate(key)
	return &def, nil
}

func (n *Notifier) Templates(ctx context.Context) ([]Template, error) {
	keys := []string{TemplateWelcome, TemplateProjectUpdate, TemplateContact}
	out := make([]Template, 0, len(keys))
	for _, key := range keys {
		t, err := n.Template(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (n *Notifier) UpdateTemplate(ctx context.Context, t Template) (*Template, error) {
	if !KnownTemplate(t.Key) {
		return nil, fmt.Errorf("template %q: %w", t.Key, core.ErrNotFound)
	}
	if err := ValidateTemplate(t); err != nil {
		return nil, err
	}

	if err := n.templates.Upsert(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Send renders and delivers synchronously.
func (n *Notifier) Send(ctx context.Context, key, to, replyTo string, data any) error {
	t, err := n.Template(ctx, key)
	if err != nil {
		return err
	}

	subject, body, err := Render(*t, data)
	if err != nil {
		metrics.RecordEmail(key, "render_error")
		return err
	}

	_, err = n.sender.Send(ctx, &Message{
		To:       to,
		Subject:  subject,
		Body:     body,
		ReplyTo:  replyTo,
		Template: key,
	})
	if err != nil {
		metrics.RecordEmail(key, "failed")
		return fmt.Errorf("send %s: %w", key, err)
	}

	metrics.RecordEmail(key, "sent")
	return nil
}

// Dispatch sends in the background. The request context is detached so
// the send outlives the response; failures are logged and dropped.
func (n *Notifier) Dispatch(ctx context.Context, key, to, replyTo string, data any) {
	if to == "" {
		return
	}

	detached := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(detached, sendTimeout)
		defer cancel()

		if err := n.Send(sendCtx, key, to, replyTo, data); err != nil {
			n.logger.Warn("email dispatch failed",
				"template", key,
				"to", to,
				"error", err,
			)
		}
	}()
}

// Wait blocks until in-flight dispatches finish or ctx ends.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
