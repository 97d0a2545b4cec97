// internal/app/features/register/routes.go
package register

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts GET and POST /register. throttle guards the POST.
func Routes(h *Handler, throttle func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRegister)
	r.With(throttle).Post("/", h.HandleRegisterPost)
	return r
}
