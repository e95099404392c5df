// AngelaMos | 2026
// handler.go

package document

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/middleware"
)

const multipartMemory = 8 << 20

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
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upload)
		r.Route("/{documentID}", func(r chi.Router) {
			r.Use(middleware.IDParam("documentID", "document"))
			r.Get("/", h.Get)
			r.Get("/download", h.Download)
			r.Delete("/", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if fields := core.QueryIDErrors(r, "client_id", "project_id"); fields != nil {
		core.JSONError(w, core.ValidationError(fields))
		return
	}

	q := r.URL.Query()
	params := ListParams{
		Page:      core.QueryInt(r, "page", 1),
		PageSize:  core.QueryInt(r, "page_size", 20),
		ClientID:  q.Get("client_id"),
		ProjectID: q.Get("project_id"),
		Category:  q.Get("category"),
	}
	params.Normalize()

	docs, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(docs), params.Page, params.PageSize, total)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if limit := h.service.MaxBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.NewAppError(
				core.ErrInvalidInput,
				"file is too large",
				http.StatusRequestEntityTooLarge,
				"FILE_TOO_LARGE",
			))
			return
		}
		core.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup
	}()

	req := UploadRequest{
		ClientID:    r.FormValue("client_id"),
		ProjectID:   formOptional(r, "project_id"),
		Title:       r.FormValue("title"),
		Description: formOptional(r, "description"),
		Category:    r.FormValue("category"),
		Tags:        r.FormValue("tags"),
	}
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.ValidationFields(err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		core.JSONError(w, core.ValidationError(core.FieldErrors{"file": "file is required"}))
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart file

	d, err := h.service.Upload(r.Context(), Upload{
		UploadRequest: req,
		FileName:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		Size:          header.Size,
		Body:          file,
	})
	if err != nil {
		core.RespondError(w, err, "client")
		return
	}

	core.Created(w, ToResponse(d))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		core.RespondError(w, err, "document")
		return
	}

	core.OK(w, ToResponse(d))
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.AdminDownloadURL(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		core.RespondError(w, err, "document")
		return
	}

	core.OK(w, link)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		core.RespondError(w, err, "document")
		return
	}

	core.NoContent(w)
}

func formOptional(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
