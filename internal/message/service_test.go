// AngelaMos | 2026
// service_test.go

package message

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/notify"
	"github.com/angelamos/studio-portal/internal/project"
)

type fakeRepo struct {
	mu        sync.Mutex
	msgs      []Message
	markCalls int
}

func (f *fakeRepo) Create(_ context.Context, m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeRepo) ListByProject(_ context.Context, projectID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.msgs {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, projectID, viewer string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	for i := range f.msgs {
		m := &f.msgs[i]
		if m.ProjectID == projectID && m.Sender != viewer && slices.Contains(ids, m.ID) {
			m.setReadBy(viewer)
		}
	}
	return nil
}

func (f *fakeRepo) UnreadByProject(_ context.Context, viewer string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for i := range f.msgs {
		if f.msgs[i].UnreadFor(viewer) {
			counts[f.msgs[i].ProjectID]++
		}
	}
	return counts, nil
}

type fakeProjects map[string]project.Project

func (f fakeProjects) GetByID(_ context.Context, id string) (*project.Project, error) {
	p, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	return &p, nil
}

type fakeClients map[string]client.Client

func (f fakeClients) Get(_ context.Context, id string) (*client.Client, error) {
	c, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("get client: %w", core.ErrNotFound)
	}
	return &c, nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	keys []string
	to   []string
	data []any
}

func (f *fakeDispatcher) Dispatch(_ context.Context, key, to, _ string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.to = append(f.to, to)
	f.data = append(f.data, data)
}

type testEnv struct {
	repo     *fakeRepo
	notifier *fakeDispatcher
	svc      *Service
}

const (
	projectOne = "4d1a7e93-2b6c-4f08-9e5d-6a7b8c9d0e21"
	projectTwo = "5e2b8fa4-3c7d-4019-8f6e-7b8c9d0e1f32"
)

func newTestEnv() *testEnv {
	repo := &fakeRepo{}
	notifier := &fakeDispatcher{}
	svc := NewService(ServiceConfig{
		Repo: repo,
		Projects: fakeProjects{
			projectOne: {ID: projectOne, ClientID: "c1", Title: "Harbour House", Status: project.StatusReview},
			projectTwo: {ID: projectTwo, ClientID: "c2", Title: "Loft", Status: project.StatusPlanning},
		},
		Clients:   fakeClients{"c1": {ID: "c1", FirstName: "Ada", Email: "ada@example.com"}},
		Notifier:  notifier,
		PortalURL: "https://portal.example.com",
	})
	return &testEnv{repo: repo, notifier: notifier, svc: svc}
}

func TestPost_SenderHasRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	m, err := env.svc.Post(ctx, projectOne, RoleClient, "acct-1", "  When is the site visit? ")
	require.NoError(t, err)
	assert.Equal(t, "When is the site visit?", m.Body)
	assert.True(t, m.ReadByClient)
	assert.False(t, m.ReadByAdmin)
	require.NotNil(t, m.AccountID)

	_, err = env.svc.Post(ctx, projectOne, RoleClient, "", "   ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = env.svc.Post(ctx, projectOne, "guest", "", "hi")
	assert.Error(t, err)
}

func TestMarkRead_WritesOnlyOnTransition(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	for _, m := range tenMessages() {
		m.ProjectID = projectOne
		env.repo.msgs = append(env.repo.msgs, m)
	}

	msgs, err := env.svc.MarkRead(ctx, projectOne, RoleClient)
	require.NoError(t, err)
	assert.Zero(t, CountUnread(msgs, RoleClient))
	assert.Equal(t, 1, env.repo.markCalls)

	stored, _ := env.repo.ListByProject(ctx, projectOne)
	assert.Zero(t, CountUnread(stored, RoleClient))
	assert.Equal(t, 4, CountUnread(stored, RoleAdmin))

	msgs, err = env.svc.MarkRead(ctx, projectOne, RoleClient)
	require.NoError(t, err)
	assert.Zero(t, CountUnread(msgs, RoleClient))
	assert.Equal(t, 1, env.repo.markCalls, "second open must not write")
}

func TestReply_NotifiesClient(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Reply(ctx, projectOne, "admin-1", ReplyRequest{Body: "Permit approved", NotifyClient: true})
	require.NoError(t, err)
	require.Len(t, env.notifier.keys, 1)
	assert.Equal(t, notify.TemplateProjectUpdate, env.notifier.keys[0])
	assert.Equal(t, "ada@example.com", env.notifier.to[0])
	data := env.notifier.data[0].(notify.ProjectUpdateData)
	assert.Equal(t, "Permit approved", data.Note)
	assert.Equal(t, "Review", data.Status)

	_, err = env.svc.Reply(ctx, projectOne, "admin-1", ReplyRequest{Body: "Internal only"})
	require.NoError(t, err)
	assert.Len(t, env.notifier.keys, 1)

	m, err := env.svc.Reply(ctx, projectTwo, "admin-1", ReplyRequest{Body: "No client row", NotifyClient: true})
	require.NoError(t, err, "a failed lookup does not fail the reply")
	assert.NotNil(t, m)

	_, err = env.svc.Reply(ctx, "missing", "admin-1", ReplyRequest{Body: "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInbox(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, p := range []string{projectOne, projectTwo, projectTwo} {
		_, err := env.svc.Post(ctx, p, RoleClient, "", "hello")
		require.NoError(t, err)
	}

	entries, err := env.svc.Inbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, []InboxEntry{{ProjectID: projectTwo, UnreadCount: 2}, {ProjectID: projectOne, UnreadCount: 1}}, entries)

	total, err := env.svc.UnreadForAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	_, err = env.svc.OpenThread(ctx, projectTwo)
	require.NoError(t, err)
	total, _ = env.svc.UnreadForAdmin(ctx)
	assert.Equal(t, 1, total)
}

func TestHandler_Threads(t *testing.T) {
	env := newTestEnv()
	r := chi.NewRouter()
	NewHandler(env.svc).RegisterAdminRoutes(r)

	_, err := env.svc.Post(context.Background(), projectOne, RoleClient, "", "hello")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/threads/"+projectOne, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread_count":0`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/threads/"+projectOne, strings.NewReader(`{"body":""}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/threads/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
