// AngelaMos | 2026
// handler.go

package message

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/middleware"
)

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

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/threads", func(r chi.Router) {
		r.Get("/", h.Inbox)
		r.With(middleware.IDParam("projectID", "project")).Get("/{projectID}", h.Open)
		r.With(middleware.IDParam("projectID", "project")).Post("/{projectID}", h.Reply)
	})
}

func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Inbox(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, entries)
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.OpenThread(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.OK(w, ToThreadResponse(msgs, RoleAdmin))
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	m, err := h.service.Reply(
		r.Context(),
		chi.URLParam(r, "projectID"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.Created(w, ToResponse(m, RoleAdmin))
}
