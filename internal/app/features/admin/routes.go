// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDashboard)
	r.Get("/live", h.ServeLive)

	r.Route("/film", func(r chi.Router) {
		r.Get("/add", h.ServeAdd)
		r.Post("/add", h.HandleAdd)
		r.Get("/edit/{id}", h.ServeEdit)
		r.Post("/edit/{id}", h.HandleEdit)
		r.Post("/{id}/delete", h.HandleDelete)
		r.Post("/{id}/publish", h.HandlePublish)
	})
	return r
}
