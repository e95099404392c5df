// AngelaMos | 2026
// lead_test.go

package lead

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/middleware"
	"github.com/angelamos/studio-portal/internal/notify"
	"github.com/angelamos/studio-portal/internal/storage"
)

const calculatorKey = "assets/project-cost-calculator.xlsx"

type fakeRepo struct {
	mu          sync.Mutex
	subscribers map[string]Subscriber
	leads       []CalculatorLead
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{subscribers: map[string]Subscriber{}}
}

func (f *fakeRepo) Subscribe(_ context.Context, s *Subscriber) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.subscribers[s.Email]; ok {
		*s = existing
		return false, nil
	}
	s.CreatedAt = time.Now()
	f.subscribers[s.Email] = *s
	return true, nil
}

func (f *fakeRepo) CreateCalculatorLead(_ context.Context, l *CalculatorLead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.CreatedAt = time.Now()
	f.leads = append(f.leads, *l)
	return nil
}

type testEnv struct {
	repo     *fakeRepo
	store    *storage.MemoryStore
	sender   *notify.RecordingSender
	notifier *notify.Notifier
	service  *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   newFakeRepo(),
		store:  storage.NewMemoryStore("assets", 15*time.Minute),
		sender: notify.NewRecordingSender(),
	}
	env.notifier = notify.NewNotifier(env.sender, notify.NewMemoryTemplateRepository(), nil)

	require.NoError(t, env.store.Put(context.Background(), storage.Object{
		Key:         calculatorKey,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, strings.NewReader("xlsx")))

	env.service = NewService(ServiceConfig{
		Repo:          env.repo,
		Assets:        env.store,
		Notifier:      env.notifier,
		CalculatorKey: calculatorKey,
		OfficeInbox:   "studio@example.com",
		PresignTTL:    15 * time.Minute,
	})
	return env
}

func TestService_SubscribeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, created, err := env.service.Subscribe(ctx, SubscribeRequest{Email: "Ada@Example.com"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, defaultSource, first.Source)

	again, created, err := env.service.Subscribe(ctx, SubscribeRequest{Email: " ada@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, env.repo.subscribers, 1)
}

func TestService_Calculator(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.service.Calculator(context.Background(), CalculatorRequest{
		Name:        "Ada",
		Email:       "ADA@example.com",
		ProjectType: ptr("residential"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "memory://assets/"+calculatorKey))
	assert.Equal(t, "project-cost-calculator.xlsx", resp.FileName)

	require.Len(t, env.repo.leads, 1)
	assert.Equal(t, "ada@example.com", env.repo.leads[0].Email)
}

func TestService_CalculatorMissingAsset(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Delete(context.Background(), calculatorKey))

	_, err := env.service.Calculator(context.Background(), CalculatorRequest{Name: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Len(t, env.repo.leads, 1, "the lead is kept even without the asset")
}

func TestService_ContactEmailsOffice(t *testing.T) {
	env := newTestEnv(t)

	env.service.Contact(context.Background(), ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Extension",
		Message: "We'd like a rear extension.",
	})
	require.NoError(t, env.notifier.Wait(context.Background()))

	sent := env.sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "studio@example.com", sent[0].To)
	assert.Equal(t, "ada@example.com", sent[0].ReplyTo)
	assert.Equal(t, "Website enquiry: Extension", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "rear extension")
}

func newRouter(env *testEnv, limit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	NewHandler(env.service).RegisterRoutes(r, limit)
	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Routes(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"subscribe", "/newsletter", `{"email":"new@example.com"}`, http.StatusCreated},
		{"subscribe bad email", "/newsletter", `{"email":"nope"}`, http.StatusUnprocessableEntity},
		{"calculator", "/leads/calculator", `{"name":"Ada","email":"ada@example.com"}`, http.StatusCreated},
		{"calculator bad type", "/leads/calculator",
			`{"name":"Ada","email":"ada@example.com","project_type":"castle"}`, http.StatusUnprocessableEntity},
		{"contact", "/contact", `{"name":"Ada","email":"ada@example.com","message":"Hi"}`, http.StatusAccepted},
		{"contact missing message", "/contact", `{"name":"Ada","email":"ada@example.com"}`, http.StatusUnprocessableEntity},
		{"unknown field", "/contact", `{"name":"Ada","spam":true}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := post(newRouter(env, nil), tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			require.NoError(t, env.notifier.Wait(context.Background()))
		})
	}
}

func TestHandler_SubscribeTwiceIsOK(t *testing.T) {
	h := newRouter(newTestEnv(t), nil)

	assert.Equal(t, http.StatusCreated, post(h, "/newsletter", `{"email":"a@example.com"}`).Code)
	assert.Equal(t, http.StatusOK, post(h, "/newsletter", `{"email":"a@example.com"}`).Code)
}

func TestHandler_HourlyLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(nil, middleware.RateLimitConfig{
		Limit:  middleware.PerHour(2, 2),
		Prefix: "lead-test",
	})
	h := newRouter(newTestEnv(t), limiter.Handler)

	for i := range 2 {
		body := fmt.Sprintf(`{"email":"a%d@example.com"}`, i)
		assert.Equal(t, http.StatusCreated, post(h, "/newsletter", body).Code)
	}

	rec := post(h, "/contact", `{"name":"Ada","email":"ada@example.com","message":"Hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "the window is shared across funnel routes")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func ptr[T any](v T) *T {
	return &v
}
