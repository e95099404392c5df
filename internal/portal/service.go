// AngelaMos | 2026
// service.go

package portal

import (
	"context"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/document"
	"github.com/angelamos/studio-portal/internal/message"
	"github.com/angelamos/studio-portal/internal/middleware"
)

type MessageWriter interface {
	Post(ctx context.Context, projectID, sender, accountID, body string) (*message.Message, error)
	MarkRead(ctx context.Context, projectID, viewer string) ([]message.Message, error)
}

type DocumentSigner interface {
	DownloadURL(ctx context.Context, clientID, id string) (*document.DownloadResponse, error)
}

// Service is the client-facing portal. Every method takes an already
// resolved client and checks project membership itself.
type Service struct {
	resolver  *Resolver
	access    *AccessSet
	composer  *Composer
	messages  MessageWriter
	documents DocumentSigner
}

type ServiceConfig struct {
	Resolver  *Resolver
	Access    *AccessSet
	Composer  *Composer
	Messages  MessageWriter
	Documents DocumentSigner
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		resolver:  cfg.Resolver,
		access:    cfg.Access,
		composer:  cfg.Composer,
		messages:  cfg.Messages,
		documents: cfg.Documents,
	}
}

func (s *Service) Resolve(ctx context.Context, p *middleware.Principal) (*client.Client, error) {
	return s.resolver.Resolve(ctx, p)
}

// Projects is the access set with each project's summary, progress and
// unread count.
func (s *Service) Projects(ctx context.Context, c *client.Client) ([]*View, error) {
	projects, err := s.access.Projects(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.composer.ComposeAll(ctx, c, projects, PartPhases|PartMessages), nil
}

func (s *Service) View(ctx context.Context, c *client.Client, projectID string, parts Part) (*View, error) {
	p, err := s.access.Project(ctx, c, projectID)
	if err != nil {
		return nil, err
	}
	return s.composer.Compose(ctx, c, p, parts), nil
}

func (s *Service) PostMessage(
	ctx context.Context,
	c *client.Client,
	accountID, projectID, body string,
) (*message.Message, error) {
	if _, err := s.access.Project(ctx, c, projectID); err != nil {
		return nil, err
	}
	return s.messages.Post(ctx, projectID, message.RoleClient, accountID, body)
}

// MarkRead is the client opening the messages tab.
func (s *Service) MarkRead(ctx context.Context, c *client.Client, projectID string) ([]message.Message, error) {
	if _, err := s.access.Project(ctx, c, projectID); err != nil {
		return nil, err
	}
	return s.messages.MarkRead(ctx, projectID, message.RoleClient)
}

func (s *Service) DownloadURL(ctx context.Context, c *client.Client, documentID string) (*document.DownloadResponse, error) {
	if err := core.RequireID("client document", documentID); err != nil {
		return nil, err
	}
	return s.documents.DownloadURL(ctx, c.ID, documentID)
}
