// AngelaMos | 2026
// handler.go

package notify

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/studio-portal/internal/core"
)

type UpdateTemplateRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body"    validate:"required,max=20000"`
}

type Handler struct {
	notifier  *Notifier
	validator *validator.Validate
}

func NewHandler(notifier *Notifier) *Handler {
	return &Handler{
		notifier:  notifier,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/email-templates", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{key}", h.Get)
		r.Put("/{key}", h.Update)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.notifier.Templates(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, templates)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.notifier.Template(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		core.RespondError(w, err, "email template")
		return
	}
	core.OK(w, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTemplateRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	t, err := h.notifier.UpdateTemplate(r.Context(), Template{
		Key:     chi.URLParam(r, "key"),
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		core.RespondError(w, err, "email template")
		return
	}
	core.OK(w, t)
}
