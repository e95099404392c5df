// AngelaMos | 2026
// handler.go

package portal

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/message"
	"github.com/angelamos/studio-portal/internal/middleware"
)

type clientKey struct{}

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the portal. The caller is expected to have
// authenticated the request; identity is resolved here on every request.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portal", func(r chi.Router) {
		r.Use(h.ResolveClient)

		r.Get("/me", h.Me)
		r.Get("/projects", h.Projects)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/", h.Overview)
			r.Get("/timeline", h.Timeline)
			r.Get("/documents", h.Documents)
			r.Get("/photos", h.Photos)
			r.Get("/messages", h.Messages)
			r.Post("/messages", h.PostMessage)
			r.Post("/messages/read", h.MarkRead)
			r.Get("/financials", h.Financials)
		})

		r.Get("/documents/{documentID}/download", h.Download)
	})
}

// ResolveClient maps the principal to its client and stores it on the
// request context.
func (h *Handler) ResolveClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := h.service.Resolve(r.Context(), middleware.GetPrincipal(r.Context()))
		if err != nil {
			respondIdentityError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, c)))
	})
}

func respondIdentityError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	case errors.Is(err, core.ErrAccessDenied):
		core.JSONError(w, core.AccessDeniedError("no portal access for this account"))
	default:
		core.InternalServerError(w, err)
	}
}

func clientFrom(ctx context.Context) *client.Client {
	c, _ := ctx.Value(clientKey{}).(*client.Client)
	return c
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	core.OK(w, client.ToResponse(c))
}

func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Projects(r.Context(), clientFrom(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProjectCards(views))
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request, parts Part) (*View, bool) {
	v, err := h.service.View(r.Context(), clientFrom(r.Context()), chi.URLParam(r, "projectID"), parts)
	if err != nil {
		core.RespondError(w, err, "project")
		return nil, false
	}
	return v, true
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r, PartAll); ok {
		core.OK(w, ToOverview(v))
	}
}

func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r, PartPhases); ok {
		core.OK(w, ToTimeline(v))
	}
}

func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r, PartDocuments); ok {
		core.OK(w, ToDocuments(v, v.Documents))
	}
}

func (h *Handler) Photos(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r, PartDocuments); ok {
		core.OK(w, ToDocuments(v, v.Photos()))
	}
}

// Messages reads the thread without marking it; the read transition is
// its own request.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r, PartMessages); ok {
		core.OK(w, ToMessages(v))
	}
}

func (h *Handler) Financials(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r, 0); ok {
		core.OK(w, ToFinancials(v))
	}
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	m, err := h.service.PostMessage(
		r.Context(),
		clientFrom(r.Context()),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "projectID"),
		req.Body,
	)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.Created(w, message.ToResponse(m, message.RoleClient))
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.MarkRead(r.Context(), clientFrom(r.Context()), chi.URLParam(r, "projectID"))
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.OK(w, message.ToThreadResponse(msgs, message.RoleClient))
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.DownloadURL(r.Context(), clientFrom(r.Context()), chi.URLParam(r, "documentID"))
	if err != nil {
		core.RespondError(w, err, "document")
		return
	}

	core.OK(w, link)
}
