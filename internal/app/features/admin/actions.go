// internal/app/features/admin/actions.go
package admin

import (
	"context"
	"errors"
	"net/http"

	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes a film. The browser asks for confirmation first.
// POST /admin/film/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}
	langs := locale.Languages(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Films.Delete(ctx, id)
	switch {
	case errors.Is(err, filmstore.ErrNotFound):
		h.done(w, r, h.Msg.Message("film.not_found", nil, langs...), true)
	case err != nil:
		h.Log.Error("delete film failed", zap.String("film_id", id.Hex()), zap.Error(err))
		h.done(w, r, h.Msg.Message("film.delete_failed", nil, langs...), true)
	default:
		metrics.FilmWrites.WithLabelValues("delete").Inc()
		h.Log.Info("film deleted", zap.String("film_id", id.Hex()))
		h.done(w, r, h.Msg.Message("film.deleted", nil, langs...), false)
	}
}

// HandlePublish flips a film between draft and published. An explicit
// "published" form value of "true" or "false" sets the state instead.
// POST /admin/film/{id}/publish
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}
	langs := locale.Languages(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var target bool
	switch r.FormValue("published") {
	case "true":
		target = true
	case "false":
		target = false
	default:
		f, err := h.Films.Get(ctx, id)
		if errors.Is(err, filmstore.ErrNotFound) {
			h.done(w, r, h.Msg.Message("film.not_found", nil, langs...), true)
			return
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "load film failed", err, h.Msg.Message("film.load_failed", nil, langs...), "/admin")
			return
		}
		target = !f.Published
	}

	err := h.Films.SetPublished(ctx, id, target)
	switch {
	case errors.Is(err, filmstore.ErrNotFound):
		h.done(w, r, h.Msg.Message("film.not_found", nil, langs...), true)
		return
	case err != nil:
		h.Log.Error("set published failed", zap.String("film_id", id.Hex()), zap.Error(err))
		h.done(w, r, h.Msg.Message("film.update_failed", nil, langs...), true)
		return
	}

	metrics.FilmWrites.WithLabelValues("publish").Inc()
	msgID := "film.unpublished"
	if target {
		msgID = "film.published"
	}
	h.done(w, r, h.Msg.Message(msgID, nil, langs...), false)
}
