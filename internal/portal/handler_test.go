// AngelaMos | 2026
// handler_test.go

package portal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/middleware"
)

// newRouter authenticates every request as email, or leaves it anonymous
// when email is empty.
func newRouter(s *store, email string) http.Handler {
	h := NewHandler(newTestService(s, ResolverConfig{}))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if email != "" {
				r = r.WithContext(middleware.WithPrincipal(r.Context(), &middleware.Principal{
					UserID: "acct-1",
					Email:  email,
					Role:   middleware.RoleClient,
				}))
			}
			next.ServeHTTP(w, r)
		})
	})
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHandler_IdentityGate(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		status int
		code   string
	}{
		{"anonymous", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no client record", "stranger@example.com", http.StatusForbidden, "ACCESS_DENIED"},
		{"ineligible tier", "cy@example.com", http.StatusForbidden, "ACCESS_DENIED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newRouter(seed(), tt.email), http.MethodGet, "/portal/me", "")
			assert.Equal(t, tt.status, rec.Code)

			env := decode(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestHandler_Me(t *testing.T) {
	rec := do(t, newRouter(seed(), "ADA@example.com"), http.MethodGet, "/portal/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"client-a"`)
}

func TestHandler_Projects(t *testing.T) {
	rec := do(t, newRouter(seed(), "ada@example.com"), http.MethodGet, "/portal/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []ProjectCard
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, projectA, cards[0].Project.ID)
	assert.Equal(t, 30, cards[0].Financial.PercentPaid)
	require.NotNil(t, cards[0].UnreadMessages.Data)
	assert.Equal(t, 4, *cards[0].UnreadMessages.Data)
}

func TestHandler_ForeignProjectIsNotFound(t *testing.T) {
	h := newRouter(seed(), "ada@example.com")

	for _, path := range []string{
		"/portal/projects/" + projectB,
		"/portal/projects/" + projectB + "/timeline",
		"/portal/projects/" + projectB + "/documents",
		"/portal/projects/" + projectB + "/financials",
		"/portal/projects/5b8e2f41-0c7d-4e9a-b3f6-9d1e2c4a7b99",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := do(t, h, http.MethodPost, "/portal/projects/" + projectB + "/messages", `{"body":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// The store rejects ids that are not uuids with a driver error, as
// Postgres does, so these only pass if the id never reaches it.
func TestHandler_MalformedIDIsNotFound(t *testing.T) {
	s := seed()
	h := newRouter(s, "ada@example.com")

	for _, tc := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/portal/projects/abc", ""},
		{http.MethodGet, "/portal/projects/abc/timeline", ""},
		{http.MethodGet, "/portal/projects/" + projectA + "x/financials", ""},
		{http.MethodPost, "/portal/projects/abc/messages", `{"body":"hi"}`},
		{http.MethodPost, "/portal/projects/abc/messages/read", ""},
		{http.MethodGet, "/portal/documents/d1/download", ""},
	} {
		rec := do(t, h, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusNotFound, rec.Code, tc.path)

		env := decode(t, rec)
		require.NotNil(t, env.Error, tc.path)
		assert.Equal(t, "NOT_FOUND", env.Error.Code, tc.path)
	}
}

func TestHandler_Overview(t *testing.T) {
	rec := do(t, newRouter(seed(), "ada@example.com"), http.MethodGet, "/portal/projects/" + projectA, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"percent_paid":30`)
	assert.Contains(t, body, `"percent_complete":60`)
	assert.Contains(t, body, `"photo_count":{"status":"ok","data":1}`)
	assert.NotContains(t, body, "internal", "office notes are not shown to clients")
}

func TestHandler_OverviewDegrades(t *testing.T) {
	s := seed()
	s.failPhases = errBoom

	rec := do(t, newRouter(s, "ada@example.com"), http.MethodGet, "/portal/projects/" + projectA, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var overview OverviewResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &overview))
	assert.Equal(t, StatusUnavailable, overview.Progress.Status)
	assert.True(t, overview.Progress.Retryable)
	assert.Nil(t, overview.Progress.Data)
	assert.Equal(t, StatusOK, overview.RecentDocuments.Status)
	assert.Equal(t, 30, overview.Financial.PercentPaid)
}

func TestHandler_Photos(t *testing.T) {
	rec := do(t, newRouter(seed(), "ada@example.com"), http.MethodGet, "/portal/projects/" + projectA + "/photos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DocumentsResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	require.NotNil(t, resp.Documents.Data)
	require.Len(t, *resp.Documents.Data, 1)
	assert.Equal(t, docSite, (*resp.Documents.Data)[0].ID)
}

func TestHandler_MessagesReadTransition(t *testing.T) {
	h := newRouter(seed(), "ada@example.com")

	rec := do(t, h, http.MethodGet, "/portal/projects/" + projectA + "/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread_count":4`)

	rec = do(t, h, http.MethodGet, "/portal/projects/" + projectA + "/messages", "")
	assert.Contains(t, rec.Body.String(), `"unread_count":4`, "reading does not mark")

	rec = do(t, h, http.MethodPost, "/portal/projects/" + projectA + "/messages/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread_count":0`)

	rec = do(t, h, http.MethodPost, "/portal/projects/" + projectA + "/messages/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread_count":0`)
}

func TestHandler_PostMessage(t *testing.T) {
	s := seed()
	h := newRouter(s, "ada@example.com")

	rec := do(t, h, http.MethodPost, "/portal/projects/" + projectA + "/messages", `{"body":"When is the site visit?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, s.messages, 11)
	assert.Equal(t, "client", s.messages[10].Sender)

	rec = do(t, h, http.MethodPost, "/portal/projects/" + projectA + "/messages", `{"body":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/portal/projects/" + projectA + "/messages", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Download(t *testing.T) {
	h := newRouter(seed(), "ada@example.com")

	rec := do(t, h, http.MethodGet, "/portal/documents/" + docPlan + "/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "plan.pdf")

	rec = do(t, h, http.MethodGet, "/portal/documents/" + docOther + "/download", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
