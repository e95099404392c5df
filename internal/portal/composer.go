// AngelaMos | 2026
// composer.go

package portal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/document"
	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/message"
	"github.com/angelamos/studio-portal/internal/metrics"
	"github.com/angelamos/studio-portal/internal/progress"
	"github.com/angelamos/studio-portal/internal/project"
)

type PhaseSource interface {
	Phases(ctx context.Context, projectID string) ([]project.Phase, error)
}

type DocumentSource interface {
	ListForClient(ctx context.Context, clientID string, projectID *string) ([]document.Document, error)
}

type MessageSource interface {
	Thread(ctx context.Context, projectID string) ([]message.Message, error)
}

// Part selects which dependent reads a view needs.
type Part uint8

const (
	PartPhases Part = 1 << iota
	PartDocuments
	PartMessages

	PartAll = PartPhases | PartDocuments | PartMessages
)

const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Section is one independently loaded part of a view.
type Section[T any] struct {
	Status    string
	Retryable bool
	Data      T
}

func (s Section[T]) OK() bool {
	return s.Status == StatusOK
}

func ok[T any](v T) Section[T] {
	return Section[T]{Status: StatusOK, Data: v}
}

func unavailable[T any]() Section[T] {
	return Section[T]{Status: StatusUnavailable, Retryable: true}
}

// View is everything a dashboard tab shows for one project. Financial and
// Progress are computed once here and every tab reads them from the view.
type View struct {
	Client    *client.Client
	Project   *project.Project
	Financial finance.Summary
	Progress  Section[progress.Summary[project.Phase]]
	Documents Section[[]document.Document]
	Messages  Section[[]message.Message]
}

func (v *View) Photos() Section[[]document.Document] {
	if !v.Documents.OK() {
		return v.Documents
	}
	return ok(document.Photos(v.Documents.Data))
}

// UnreadCount is the client's unread count, or nil when messages did not
// load.
func (v *View) UnreadCount() *int {
	if !v.Messages.OK() {
		return nil
	}
	n := message.CountUnread(v.Messages.Data, message.RoleClient)
	return &n
}

type ComposerConfig struct {
	Phases    PhaseSource
	Documents DocumentSource
	Messages  MessageSource
	Calc      *finance.Calculator
	Logger    *slog.Logger
}

type Composer struct {
	phases    PhaseSource
	documents DocumentSource
	messages  MessageSource
	calc      *finance.Calculator
	logger    *slog.Logger
}

func NewComposer(cfg ComposerConfig) *Composer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	calc := cfg.Calc
	if calc == nil {
		calc = finance.NewCalculator(nil)
	}
	return &Composer{
		phases:    cfg.Phases,
		documents: cfg.Documents,
		messages:  cfg.Messages,
		calc:      calc,
		logger:    logger,
	}
}

// Compose loads the requested parts concurrently and waits for all of
// them. A failed part is marked unavailable and never cancels the others.
// p must already be in c's access set.
func (c *Composer) Compose(ctx context.Context, cl *client.Client, p *project.Project, parts Part) *View {
	v := &View{
		Client:    cl,
		Project:   p,
		Financial: c.calc.Summarize(p.ContractSum, p.CashReceived),
	}

	var wg sync.WaitGroup

	if parts&PartPhases != 0 {
		wg.Go(func() {
			v.Progress = load(ctx, c, "phases", p.ID, func(ctx context.Context) (progress.Summary[project.Phase], error) {
				phases, err := c.phases.Phases(ctx, p.ID)
				if err != nil {
					return progress.Summary[project.Phase]{}, err
				}
				return progress.Aggregate(phases), nil
			})
		})
	}

	if parts&PartDocuments != 0 {
		wg.Go(func() {
			v.Documents = load(ctx, c, "documents", p.ID, func(ctx context.Context) ([]document.Document, error) {
				docs, err := c.documents.ListForClient(ctx, cl.ID, &p.ID)
				if docs == nil && err == nil {
					docs = []document.Document{}
				}
				return docs, err
			})
		})
	}

	if parts&PartMessages != 0 {
		wg.Go(func() {
			v.Messages = load(ctx, c, "messages", p.ID, func(ctx context.Context) ([]message.Message, error) {
				msgs, err := c.messages.Thread(ctx, p.ID)
				if msgs == nil && err == nil {
					msgs = []message.Message{}
				}
				return msgs, err
			})
		})
	}

	wg.Wait()
	return v
}

// ComposeAll builds one view per project, concurrently.
func (c *Composer) ComposeAll(
	ctx context.Context,
	cl *client.Client,
	projects []project.Project,
	parts Part,
) []*View {
	views := make([]*View, len(projects))

	var wg sync.WaitGroup
	for i := range projects {
		wg.Go(func() {
			views[i] = c.Compose(ctx, cl, &projects[i], parts)
		})
	}
	wg.Wait()

	return views
}

func load[T any](
	ctx context.Context,
	c *Composer,
	section, projectID string,
	fn func(context.Context) (T, error),
) (out Section[T]) {
	ctx, span := core.StartSpan(ctx, "portal.load."+section,
		attribute.String("project.id", projectID),
	)

	var err error
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		core.EndSpan(span, err)
		if err != nil {
			metrics.RecordSectionFailure(section)
			c.logger.Warn("portal section unavailable",
				"section", section,
				"project_id", projectID,
				"error", err,
			)
			out = unavailable[T]()
		}
	}()

	var v T
	v, err = fn(ctx)
	if err != nil {
		return unavailable[T]()
	}
	return ok(v)
}
