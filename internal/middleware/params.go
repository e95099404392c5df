// AngelaMos | 2026
// params.go

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/studio-portal/internal/core"
)

// IDParam answers 404 for a route whose param is not a row id.
func IDParam(param, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := core.RequireID(resource, chi.URLParam(r, param)); err != nil {
				core.RespondError(w, err, resource)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
