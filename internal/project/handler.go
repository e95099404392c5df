// AngelaMos | 2026
// handler.go

package project

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
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Use(middleware.IDParam("projectID", "project"))

			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Put("/financials", h.UpdateFinancials)
			r.Post("/notify", h.Notify)

			r.Get("/payments", h.ListPayments)
			r.Post("/payments", h.AddPayment)
			r.With(middleware.IDParam("paymentID", "payment")).
				Delete("/payments/{paymentID}", h.DeletePayment)

			r.Post("/phases", h.CreatePhase)
			r.Route("/phases/{phaseID}", func(r chi.Router) {
				r.Use(middleware.IDParam("phaseID", "phase"))
				r.Put("/", h.UpdatePhase)
				r.Delete("/", h.DeletePhase)
				r.Put("/completion", h.SetPhaseCompleted)
			})
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if fields := core.QueryIDErrors(r, "client_id"); fields != nil {
		core.JSONError(w, core.ValidationError(fields))
		return
	}

	params := ListParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		ClientID: r.URL.Query().Get("client_id"),
		Status:   r.URL.Query().Get("status"),
	}
	params.Normalize()

	projects, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(projects), params.Page, params.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.Created(w, ToResponse(p))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.OK(w, ToDetailResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.OK(w, ToResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.NoContent(w)
}

func (h *Handler) UpdateFinancials(w http.ResponseWriter, r *http.Request) {
	var req UpdateFinancialsRequest
	if err := core.DecodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	p, summary, err := h.service.UpdateFinancials(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.OK(w, FinancialsResponse{Project: ToResponse(p), Financial: summary})
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, summary, err := h.service.Payments(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.OK(w, PaymentsResponse{
		Payments:  ToPaymentResponseList(payments),
		Financial: summary,
	})
}

func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	pay, summary, err := h.service.AddPayment(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.Created(w, PaymentsResponse{
		Payments:  []PaymentResponse{ToPaymentResponse(pay)},
		Financial: summary,
	})
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DeletePayment(
		r.Context(),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "paymentID"),
	)
	if err != nil {
		core.RespondError(w, err, "payment")
		return
	}

	core.OK(w, summary)
}

func (h *Handler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	var req CreatePhaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	ph, err := h.service.CreatePhase(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.Created(w, ToPhaseResponse(ph))
}

func (h *Handler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	var req UpdatePhaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	ph, err := h.service.UpdatePhase(
		r.Context(),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "phaseID"),
		req,
	)
	if err != nil {
		core.RespondError(w, err, "phase")
		return
	}

	core.OK(w, ToPhaseResponse(ph))
}

func (h *Handler) DeletePhase(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeletePhase(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "phaseID"))
	if err != nil {
		core.RespondError(w, err, "phase")
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetPhaseCompleted(w http.ResponseWriter, r *http.Request) {
	var req SetCompletionRequest
	if !h.decode(w, r, &req) {
		return
	}

	ph, err := h.service.SetPhaseCompleted(
		r.Context(),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "phaseID"),
		req,
	)
	if err != nil {
		core.RespondError(w, err, "phase")
		return
	}

	core.OK(w, ToPhaseResponse(ph))
}

func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Notify(r.Context(), chi.URLParam(r, "projectID"), req); err != nil {
		core.RespondError(w, err, "project")
		return
	}

	core.JSON(w, http.StatusAccepted, core.Response{
		Success: true,
		Data:    map[string]string{"status": "queued"},
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := core.DecodeJSON(r, dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return false
	}
	return true
}
