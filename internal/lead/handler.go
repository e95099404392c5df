// AngelaMos | 2026
// handler.go

package lead

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/studio-portal/internal/core"
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

// RegisterRoutes mounts the public funnel. limit wraps every route and may
// be nil.
func (h *Handler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/newsletter", h.Subscribe)
		r.Post("/leads/calculator", h.Calculator)
		r.Post("/contact", h.Contact)
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

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, created, err := h.service.Subscribe(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	resp := SubscribeResponse{Email: sub.Email, Subscribed: true, Since: sub.CreatedAt}
	if created {
		core.Created(w, resp)
		return
	}
	core.OK(w, resp)
}

func (h *Handler) Calculator(w http.ResponseWriter, r *http.Request) {
	var req CalculatorRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Calculator(r.Context(), req)
	if err != nil {
		core.RespondError(w, err, "calculator")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.service.Contact(r.Context(), req)
	core.JSON(w, http.StatusAccepted, core.Response{
		Success: true,
		Data:    map[string]string{"status": "queued"},
	})
}
