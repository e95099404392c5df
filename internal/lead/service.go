// AngelaMos | 2026
// service.go

package lead

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/notify"
)

const defaultSource = "website"

type AssetSigner interface {
	DownloadURL(ctx context.Context, key, fileName string) (string, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, key, to, replyTo string, data any)
}

type ServiceConfig struct {
	Repo          Repository
	Assets        AssetSigner
	Notifier      Dispatcher
	CalculatorKey string
	OfficeInbox   string
	PresignTTL    time.Duration
	Logger        *slog.Logger
}

type Service struct {
	repo          Repository
	assets        AssetSigner
	notifier      Dispatcher
	calculatorKey string
	officeInbox   string
	presignTTL    time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:          cfg.Repo,
		assets:        cfg.Assets,
		notifier:      cfg.Notifier,
		calculatorKey: cfg.CalculatorKey,
		officeInbox:   cfg.OfficeInbox,
		presignTTL:    cfg.PresignTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// Subscribe adds the address to the newsletter list. Subscribing twice is
// not an error.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (*Subscriber, bool, error) {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Source: req.Source,
	}
	if sub.Source == "" {
		sub.Source = defaultSource
	}

	created, err := s.repo.Subscribe(ctx, sub)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("newsletter subscription", "subscriber_id", sub.ID, "source", sub.Source)
	}
	return sub, created, nil
}

// Calculator records the lead, then signs a link to the calculator asset.
func (s *Service) Calculator(ctx context.Context, req CalculatorRequest) (*CalculatorResponse, error) {
	l := &CalculatorLead{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		ProjectType: req.ProjectType,
		BudgetRange: req.BudgetRange,
	}
	if err := s.repo.CreateCalculatorLead(ctx, l); err != nil {
		return nil, err
	}

	name := path.Base(s.calculatorKey)
	url, err := s.assets.DownloadURL(ctx, s.calculatorKey, name)
	if err != nil {
		return nil, fmt.Errorf("sign calculator asset: %w", err)
	}

	return &CalculatorResponse{
		DownloadURL: url,
		FileName:    name,
		ExpiresAt:   s.now().Add(s.presignTTL).UTC(),
	}, nil
}

// Contact forwards the enquiry to the office inbox. Delivery happens in
// the background; the caller only learns it was accepted.
func (s *Service) Contact(ctx context.Context, req ContactRequest) {
	s.notifier.Dispatch(ctx, notify.TemplateContact, s.officeInbox, req.Email, notify.ContactData{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
}
