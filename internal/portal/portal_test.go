// AngelaMos | 2026
// portal_test.go

package portal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/document"
	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/message"
	"github.com/angelamos/studio-portal/internal/project"
)

// store is an in-memory backing for every portal collaborator.
type store struct {
	mu        sync.Mutex
	clients   map[string]client.Client
	projects  map[string]project.Project
	phases    map[string][]project.Phase
	documents []document.Document
	messages  []message.Message

	lookups     atomic.Int32
	failPhases  error
	failDocs    error
	panicOnMsgs bool
}

func newStore() *store {
	return &store{
		clients:  map[string]client.Client{},
		projects: map[string]project.Project{},
		phases:   map[string][]project.Phase{},
	}
}

func (s *store) GetByEmail(_ context.Context, email string) (*client.Client, error) {
	s.lookups.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get client by email: %w", core.ErrNotFound)
}

func (s *store) addClient(c client.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *store) ListForClient(_ context.Context, clientID string) ([]project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []project.Project
	for _, p := range s.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b project.Project) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *store) GetForClient(_ context.Context, clientID, id string) (*project.Project, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("get client project: %w", errInvalidUUID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.ClientID != clientID {
		return nil, fmt.Errorf("get client project: %w", core.ErrNotFound)
	}
	return &p, nil
}

func (s *store) Phases(_ context.Context, projectID string) ([]project.Phase, error) {
	if s.failPhases != nil {
		return nil, s.failPhases
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.phases[projectID]), nil
}

type documentStore struct{ *store }

func (s documentStore) ListForClient(_ context.Context, clientID string, projectID *string) ([]document.Document, error) {
	if s.failDocs != nil {
		return nil, s.failDocs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []document.Document
	for _, d := range s.documents {
		if d.ClientID != clientID {
			continue
		}
		if projectID != nil && d.ProjectID != nil && *d.ProjectID != *projectID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s documentStore) DownloadURL(_ context.Context, clientID, id string) (*document.DownloadResponse, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("get client document: %w", errInvalidUUID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.documents {
		if d.ID == id && d.ClientID == clientID {
			return &document.DownloadResponse{URL: "memory://docs/" + d.FilePath, FileName: d.FileName}, nil
		}
	}
	return nil, fmt.Errorf("get client document: %w", core.ErrNotFound)
}

func (s *store) Thread(_ context.Context, projectID string) ([]message.Message, error) {
	if s.panicOnMsgs {
		panic("thread exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []message.Message
	for _, m := range s.messages {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *store) Post(_ context.Context, projectID, sender, accountID, body string) (*message.Message, error) {
	if body == "" {
		return nil, core.FieldErrors{"body": "body is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := message.Message{
		ID:           fmt.Sprintf("m-%d", len(s.messages)+1),
		ProjectID:    projectID,
		Sender:       sender,
		AccountID:    &accountID,
		Body:         body,
		ReadByClient: sender == message.RoleClient,
		ReadByAdmin:  sender == message.RoleAdmin,
	}
	s.messages = append(s.messages, m)
	return &m, nil
}

func (s *store) MarkRead(ctx context.Context, projectID, viewer string) ([]message.Message, error) {
	msgs, err := s.Thread(ctx, projectID)
	if err != nil {
		return nil, err
	}
	updated, changed := message.MarkRead(msgs, viewer)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if slices.Contains(changed, s.messages[i].ID) {
			s.messages[i].ReadByClient = true
		}
	}
	return updated, nil
}

var (
	errBoom        = errors.New("boom")
	errInvalidUUID = errors.New("invalid input syntax for type uuid")
)

const (
	clientA = "client-a"
	clientB = "client-b"

	projectA = "6f0c1b52-8d2e-4b43-9a71-3f5d2c8e9a01"
	projectB = "a3e9d7c4-1f6b-4e28-b5c0-7d9a2e4f1b02"

	docPlan     = "0d4b6e2a-5c19-4f7e-8a3d-1b2c3d4e5f11"
	docContract = "1e5c7f3b-6d2a-4a8f-9b4e-2c3d4e5f6a12"
	docSite     = "2f6d8a4c-7e3b-4b9a-8c5f-3d4e5f6a7b13"
	docOther    = "3a7e9b5d-8f4c-4cab-9d6a-4e5f6a7b8c14"
)

func money(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

// seed builds two premium clients with one project each, plus a basic
// tier client.
func seed() *store {
	s := newStore()
	s.addClient(client.Client{ID: clientA, Email: "ada@example.com", FirstName: "Ada", Tier: client.TierPremium})
	s.addClient(client.Client{ID: clientB, Email: "ben@example.com", FirstName: "Ben", Tier: client.TierPremium})
	s.addClient(client.Client{ID: "client-c", Email: "cy@example.com", FirstName: "Cy", Tier: client.TierBasic})

	s.projects[projectA] = project.Project{
		ID: projectA, ClientID: clientA, Title: "Harbour House", Status: project.StatusInProgress,
		ContractSum: money("500000"), CashReceived: money("150000"), Notes: ptr("internal"),
	}
	s.projects[projectB] = project.Project{
		ID: projectB, ClientID: clientB, Title: "Loft", Status: project.StatusPlanning,
		ContractSum: money("200000"), CashReceived: money("200000"),
	}

	for i := 1; i <= 5; i++ {
		s.phases[projectA] = append(s.phases[projectA], project.Phase{
			ID:          fmt.Sprintf("ph-%d", i),
			ProjectID:   projectA,
			Name:        fmt.Sprintf("Phase %d", i),
			Order:       i,
			IsCompleted: i <= 3,
		})
	}

	s.documents = []document.Document{
		{ID: docPlan, ClientID: clientA, ProjectID: ptr(projectA), Title: "Plan", Category: document.CategoryDrawings,
			FileType: "application/pdf", FilePath: "clients/a/pa/plan.pdf", FileName: "plan.pdf"},
		{ID: docContract, ClientID: clientA, Title: "Contract", Category: document.CategoryContracts,
			FileType: "application/pdf", FilePath: "clients/a/general/contract.pdf", FileName: "contract.pdf"},
		{ID: docSite, ClientID: clientA, ProjectID: ptr(projectA), Title: "Site", Category: document.CategoryPhotos,
			FileType: "image/jpeg", FilePath: "clients/a/pa/site.jpg", FileName: "site.jpg"},
		{ID: docOther, ClientID: clientB, ProjectID: ptr(projectB), Title: "Other", Category: document.CategoryPhotos,
			FileType: "image/jpeg", FilePath: "clients/b/pb/x.jpg", FileName: "x.jpg"},
	}

	for i := range 6 {
		s.messages = append(s.messages, message.Message{
			ID: fmt.Sprintf("admin-%d", i), ProjectID: projectA, Sender: message.RoleAdmin,
			ReadByAdmin: true, ReadByClient: i < 2,
		})
	}
	for i := range 4 {
		s.messages = append(s.messages, message.Message{
			ID: fmt.Sprintf("client-%d", i), ProjectID: projectA, Sender: message.RoleClient,
			ReadByClient: true,
		})
	}
	return s
}

func newTestService(s *store, resolver ResolverConfig) *Service {
	return NewService(ServiceConfig{
		Resolver: NewResolver(s, resolver, nil),
		Access:   NewAccessSet(s),
		Composer: NewComposer(ComposerConfig{
			Phases:    s,
			Documents: documentStore{s},
			Messages:  s,
			Calc:      finance.NewCalculator(nil),
		}),
		Messages:  s,
		Documents: documentStore{s},
	})
}

func ptr[T any](v T) *T {
	return &v
}
