// AngelaMos | 2026
// service.go

package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/auth"
	"github.com/angelamos/studio-portal/internal/notify"
)

type AccountProvisioner interface {
	Provision(ctx context.Context, email, name string) (*auth.ProvisionResult, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, key, to, replyTo string, data any)
}

type Service struct {
	repo        Repository
	provisioner AccountProvisioner
	notifier    Dispatcher
	portalURL   string
}

func NewService(
	repo Repository,
	provisioner AccountProvisioner,
	notifier Dispatcher,
	portalURL string,
) *Service {
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		notifier:    notifier,
		portalURL:   portalURL,
	}
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	c := &Client{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
		Company:   trimOptional(req.Company),
		Phone:     trimOptional(req.Phone),
		Tier:      req.Tier,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Client, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Client, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateClientRequest) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		c.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		c.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		c.Email = normalizeEmail(*req.Email)
	}
	if req.Company != nil {
		c.Company = trimOptional(req.Company)
	}
	if req.Phone != nil {
		c.Phone = trimOptional(req.Phone)
	}
	if req.Tier != nil {
		c.Tier = *req.Tier
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ProvisionAccount creates the portal login for a client and sends the
// welcome email. The login is matched back to the client by email.
func (s *Service) ProvisionAccount(ctx context.Context, id string) (*auth.ProvisionResult, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.provisioner.Provision(ctx, c.Email, c.FullName())
	if err != nil {
		return nil, fmt.Errorf("provision account for client %s: %w", id, err)
	}

	s.notifier.Dispatch(ctx, notify.TemplateWelcome, c.Email, "", notify.WelcomeData{
		Name:              c.FirstName,
		Email:             c.Email,
		TemporaryPassword: result.TemporaryPassword,
		PortalURL:         s.portalURL,
	})
	return result, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
