// internal/app/features/movies/routes.go
package movies

import "github.com/go-chi/chi/v5"

// ListRoutes serves /movies.
func ListRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/live", h.ServeListLive)
	return r
}

// DetailRoutes serves /movie/{id} and its comments.
func DetailRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeDetail)
		r.Post("/comments", h.HandleComment)
		r.Get("/live", h.ServeDetailLive)
	})
	return r
}
