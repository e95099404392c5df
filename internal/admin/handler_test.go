// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/client"
)

type stubClients struct{ total int }

func (s stubClients) List(context.Context, client.ListParams) ([]client.Client, int, error) {
	return nil, s.total, nil
}

type stubProjects struct {
	counts map[string]int
	err    error
}

func (s stubProjects) StatusCounts(context.Context) (map[string]int, error) {
	return s.counts, s.err
}

type stubUnread int

func (s stubUnread) UnreadForAdmin(context.Context) (int, error) {
	return int(s), nil
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterAdminRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestOverview(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Clients:  stubClients{total: 12},
		Projects: stubProjects{counts: map[string]int{"planning": 2, "in_progress": 5, "completed": 1}},
		Messages: stubUnread(7),
	})

	rec := serve(h, "/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data OverviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 12, env.Data.Clients)
	assert.Equal(t, 8, env.Data.Projects)
	assert.Equal(t, 5, env.Data.ProjectsByStatus["in_progress"])
	assert.Equal(t, 7, env.Data.UnreadMessages)
}

func TestOverview_StoreFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Clients:  stubClients{},
		Projects: stubProjects{err: errors.New("connection refused")},
		Messages: stubUnread(0),
	})

	rec := serve(h, "/overview")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBPing: func(context.Context) error { return errors.New("down") },
	})

	rec := serve(h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":{"healthy":false}`)
	assert.Contains(t, rec.Body.String(), `"redis":{"healthy":true}`)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}
