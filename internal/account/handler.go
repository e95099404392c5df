// AngelaMos | 2026
// handler.go

package account

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

// RegisterAdminRoutes mounts account management under an admin-only group.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Route("/{accountID}", func(r chi.Router) {
			r.Use(middleware.IDParam("accountID", "account"))
			r.Get("/", h.GetAccount)
			r.Put("/role", h.UpdateRole)
			r.Delete("/", h.DeleteAccount)
		})
	})
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}
	params.Normalize()

	accounts, total, err := h.service.ListAccounts(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(accounts), params.Page, params.PageSize, total)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		core.RespondError(w, err, "account")
		return
	}

	core.OK(w, ToResponse(a))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	a, err := h.service.UpdateRole(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "accountID"),
		req.Role,
	)
	if err != nil {
		core.RespondError(w, err, "account")
		return
	}

	core.OK(w, ToResponse(a))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteAccount(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "accountID"),
	)
	if err != nil {
		core.RespondError(w, err, "account")
		return
	}

	core.NoContent(w)
}
