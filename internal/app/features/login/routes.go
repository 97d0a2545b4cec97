// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts GET and POST /login. throttle guards the POST.
func Routes(h *Handler, throttle func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.With(throttle).Post("/", h.HandleLoginPost)
	return r
}
