// AngelaMos | 2026
// service.go

package message

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/notify"
	"github.com/angelamos/studio-portal/internal/project"
)

type ProjectLookup interface {
	GetByID(ctx context.Context, id string) (*project.Project, error)
}

type ClientLookup interface {
	Get(ctx context.Context, id string) (*client.Client, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, key, to, replyTo string, data any)
}

type Service struct {
	repo      Repository
	projects  ProjectLookup
	clients   ClientLookup
	notifier  Dispatcher
	portalURL string
	logger    *slog.Logger
}

type ServiceConfig struct {
	Repo      Repository
	Projects  ProjectLookup
	Clients   ClientLookup
	Notifier  Dispatcher
	PortalURL string
	Logger    *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      cfg.Repo,
		projects:  cfg.Projects,
		clients:   cfg.Clients,
		notifier:  cfg.Notifier,
		portalURL: cfg.PortalURL,
		logger:    logger,
	}
}

// Thread lists a project's messages oldest first. Callers scope the
// project before asking.
func (s *Service) Thread(ctx context.Context, projectID string) ([]Message, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Post appends a message from sender. The sender has read its own message.
func (s *Service) Post(ctx context.Context, projectID, sender, accountID, body string) (*Message, error) {
	if !ValidRole(sender) {
		return nil, fmt.Errorf("post message: unknown sender %q", sender)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, core.FieldErrors{"body": "body is required"}
	}

	m := &Message{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Sender:    sender,
		Body:      body,
	}
	if accountID != "" {
		m.AccountID = &accountID
	}
	m.setReadBy(sender)

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MarkRead is the viewer-opens-thread transition. Only messages whose flag
// actually changes are written, so repeating it is a no-op.
func (s *Service) MarkRead(ctx context.Context, projectID, viewer string) ([]Message, error) {
	msgs, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	updated, changed := MarkRead(msgs, viewer)
	if len(changed) == 0 {
		return msgs, nil
	}

	if err := s.repo.MarkRead(ctx, projectID, viewer, changed); err != nil {
		return nil, err
	}
	return updated, nil
}

// OpenThread is the admin view of a thread; opening it reads the client's
// messages.
func (s *Service) OpenThread(ctx context.Context, projectID string) ([]Message, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.MarkRead(ctx, projectID, RoleAdmin)
}

// Reply posts an office message and, when asked, emails the client that
// there is something new in the portal.
func (s *Service) Reply(ctx context.Context, projectID, accountID string, req ReplyRequest) (*Message, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	m, err := s.Post(ctx, projectID, RoleAdmin, accountID, req.Body)
	if err != nil {
		return nil, err
	}

	if req.NotifyClient {
		c, err := s.clients.Get(ctx, p.ClientID)
		if err != nil {
			s.logger.Warn("reply notification skipped",
				"project_id", projectID,
				"error", err,
			)
			return m, nil
		}
		s.notifier.Dispatch(ctx, notify.TemplateProjectUpdate, c.Email, "", notify.ProjectUpdateData{
			Name:         c.FirstName,
			ProjectTitle: p.Title,
			Status:       project.StatusLabel(p.Status),
			Note:         m.Body,
			PortalURL:    s.portalURL,
		})
	}
	return m, nil
}

// Inbox lists projects with client messages the office has not read,
// busiest first.
func (s *Service) Inbox(ctx context.Context) ([]InboxEntry, error) {
	counts, err := s.repo.UnreadByProject(ctx, RoleAdmin)
	if err != nil {
		return nil, err
	}

	entries := make([]InboxEntry, 0, len(counts))
	for id, n := range counts {
		entries = append(entries, InboxEntry{ProjectID: id, UnreadCount: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UnreadCount != entries[j].UnreadCount {
			return entries[i].UnreadCount > entries[j].UnreadCount
		}
		return entries[i].ProjectID < entries[j].ProjectID
	})
	return entries, nil
}

func (s *Service) UnreadForAdmin(ctx context.Context) (int, error) {
	counts, err := s.repo.UnreadByProject(ctx, RoleAdmin)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}
