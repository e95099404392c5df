// AngelaMos | 2026
// service_test.go

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/auth"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/notify"
)

type fakeRepo struct {
	mu      sync.Mutex
	clients map[string]Client
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clients: map[string]Client{}}
}

func (f *fakeRepo) emailTaken(email, except string) bool {
	for id, c := range f.clients {
		if c.Email == email && id != except {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Create(_ context.Context, c *Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(c.Email, "") {
		return fmt.Errorf("create client: %w", core.ErrDuplicateKey)
	}
	f.clients[c.ID] = *c
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, fmt.Errorf("get client: %w", core.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clients {
		if c.Email == strings.ToLower(email) {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get client by email: %w", core.ErrNotFound)
}

func (f *fakeRepo) Update(_ context.Context, c *Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c.ID]; !ok {
		return fmt.Errorf("update client: %w", core.ErrNotFound)
	}
	if f.emailTaken(c.Email, c.ID) {
		return fmt.Errorf("update client: %w", core.ErrDuplicateKey)
	}
	f.clients[c.ID] = *c
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[id]; !ok {
		return fmt.Errorf("delete client: %w", core.ErrNotFound)
	}
	delete(f.clients, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, p ListParams) ([]Client, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Client
	for _, c := range f.clients {
		if p.Tier == "" || c.Tier == p.Tier {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

type fakeProvisioner struct {
	emails []string
	err    error
}

func (f *fakeProvisioner) Provision(_ context.Context, email, _ string) (*auth.ProvisionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.emails = append(f.emails, email)
	return &auth.ProvisionResult{AccountID: "acc-1", Email: email, TemporaryPassword: "temp-pass"}, nil
}

type dispatched struct {
	key, to string
	data    any
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []dispatched
}

func (f *fakeDispatcher) Dispatch(_ context.Context, key, to, _ string, data any) {
	f.mu.Lock()
	f.sent = append(f.sent, dispatched{key: key, to: to, data: data})
	f.mu.Unlock()
}

func newTestService() (*Service, *fakeProvisioner, *fakeDispatcher) {
	prov := &fakeProvisioner{}
	disp := &fakeDispatcher{}
	return NewService(newFakeRepo(), prov, disp, "https://studio.test/portal"), prov, disp
}

func TestTierAtLeast(t *testing.T) {
	assert.True(t, TierAtLeast(TierPremium, TierPremium))
	assert.True(t, TierAtLeast(TierPremium, TierBasic))
	assert.False(t, TierAtLeast(TierStandard, TierPremium))
	assert.False(t, TierAtLeast("gold", TierBasic))
}

func TestService_CreateAndDuplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	company := "  "

	c, err := svc.Create(ctx, CreateClientRequest{
		FirstName: "Ada", LastName: "Park", Email: " Ada@Park.io ", Company: &company, Tier: TierPremium,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@park.io", c.Email)
	assert.Nil(t, c.Company)

	_, err = svc.Create(ctx, CreateClientRequest{
		FirstName: "A", LastName: "P", Email: "ADA@park.io", Tier: TierBasic,
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestService_UpdatePartial(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientRequest{FirstName: "Ada", LastName: "Park", Email: "ada@park.io", Tier: TierBasic})
	require.NoError(t, err)

	tier := TierPremium
	updated, err := svc.Update(ctx, c.ID, UpdateClientRequest{Tier: &tier})
	require.NoError(t, err)
	assert.Equal(t, TierPremium, updated.Tier)
	assert.Equal(t, "Ada", updated.FirstName)
}

func TestService_ProvisionAccountSendsWelcome(t *testing.T) {
	svc, prov, disp := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateClientRequest{FirstName: "Ada", LastName: "Park", Email: "ada@park.io", Tier: TierPremium})
	require.NoError(t, err)

	result, err := svc.ProvisionAccount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "temp-pass", result.TemporaryPassword)
	assert.Equal(t, []string{"ada@park.io"}, prov.emails)

	require.Len(t, disp.sent, 1)
	assert.Equal(t, notify.TemplateWelcome, disp.sent[0].key)
	data, ok := disp.sent[0].data.(notify.WelcomeData)
	require.True(t, ok)
	assert.Equal(t, "Ada", data.Name)
	assert.Equal(t, "https://studio.test/portal", data.PortalURL)
}

func TestService_ProvisionAccountDuplicate(t *testing.T) {
	svc, prov, disp := newTestService()
	ctx := context.Background()
	prov.err = fmt.Errorf("provision account: %w", core.ErrDuplicateKey)

	c, err := svc.Create(ctx, CreateClientRequest{FirstName: "Ada", LastName: "Park", Email: "ada@park.io", Tier: TierPremium})
	require.NoError(t, err)

	_, err = svc.ProvisionAccount(ctx, c.ID)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.Empty(t, disp.sent)
}

func TestHandler_CreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	r := chi.NewRouter()
	NewHandler(svc).RegisterAdminRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients",
		strings.NewReader(`{"first_name":"Ada","last_name":"Park","email":"nope","tier":"gold"}`)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"email must be a valid email"`)
}

func TestHandler_CreateThenConflict(t *testing.T) {
	svc, _, _ := newTestService()
	r := chi.NewRouter()
	NewHandler(svc).RegisterAdminRoutes(r)
	body := `{"first_name":"Ada","last_name":"Park","email":"ada@park.io","tier":"premium"}`

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_DeleteMissing(t *testing.T) {
	svc, _, _ := newTestService()
	r := chi.NewRouter()
	NewHandler(svc).RegisterAdminRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
