// internal/app/features/movies/live.go
package movies

import (
	"context"
	"errors"
	"net/http"

	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/authz"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/livepush"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// detailSnapshot is one live state of a detail page. A nil Film means the
// film is gone or no longer visible.
type detailSnapshot struct {
	Film     *models.Film     `json:"film"`
	Comments []models.Comment `json:"comments"`
}

// GET /movies/live (websocket)
func (h *Handler) ServeListLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var (
		sub *livequery.Subscription[[]models.Film]
		err error
	)
	if authz.IsAdmin(r) {
		sub, err = h.Films.WatchAll(r.Context())
	} else {
		sub, err = h.Films.WatchPublished(r.Context())
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "watch films failed", err, h.Msg.Message("film.load_failed", nil, locale.Languages(r)...), "/movies")
		return
	}
	livepush.Stream(w, r, "movies", "films", sub, livepush.SignedOut(r.Context(), sess), h.Log)
}

// GET /movie/{id}/live (websocket)
func (h *Handler) ServeDetailLive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}
	sess, ok := auth.SessionFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sub, err := h.watchDetail(r.Context(), id, authz.IsAdmin(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "watch film detail failed", err, h.Msg.Message("film.load_failed", nil, locale.Languages(r)...), "/movie/"+id.Hex())
		return
	}
	livepush.Stream(w, r, "movie", "detail", sub, livepush.SignedOut(r.Context(), sess), h.Log)
}

// watchDetail re-loads the film and its comments whenever either changes.
func (h *Handler) watchDetail(ctx context.Context, id primitive.ObjectID, admin bool) (*livequery.Subscription[detailSnapshot], error) {
	listen := func(ctx context.Context) (<-chan changefeed.Change, error) {
		return h.Feed.ListenAll(ctx, filmstore.Topic, commentstore.Topic(id))
	}
	load := func(ctx context.Context) (detailSnapshot, error) {
		d, err := h.loadDetail(ctx, id, admin)
		switch {
		case errors.Is(err, filmstore.ErrNotFound), errors.Is(err, errHidden):
			return detailSnapshot{}, nil
		case err != nil:
			return detailSnapshot{}, err
		}
		return detailSnapshot{Film: &d.Film, Comments: d.Comments}, nil
	}
	return livequery.Open[detailSnapshot, changefeed.Change](ctx, listen, load)
}
