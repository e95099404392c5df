// AngelaMos | 2026
// handler.go

package client

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
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{clientID}", func(r chi.Router) {
			r.Use(middleware.IDParam("clientID", "client"))
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/account", h.ProvisionAccount)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Tier:     r.URL.Query().Get("tier"),
	}
	params.Normalize()

	clients, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(clients), params.Page, params.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.RespondError(w, err, "client email")
		return
	}

	core.Created(w, ToResponse(c))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		core.RespondError(w, err, "client")
		return
	}

	core.OK(w, ToResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateClientRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	c, err := h.service.Update(r.Context(), chi.URLParam(r, "clientID"), req)
	if err != nil {
		core.RespondError(w, err, "client")
		return
	}

	core.OK(w, ToResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "clientID")); err != nil {
		core.RespondError(w, err, "client")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ProvisionAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ProvisionAccount(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		core.RespondError(w, err, "portal account")
		return
	}

	core.Created(w, result)
}
