// internal/app/features/movies/detail.go
package movies

import (
	"context"
	"errors"
	"net/http"
	"strings"

	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	"github.com/dalemusser/filmhub/internal/app/system/authz"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/videourl"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errHidden marks a draft requested by a non-admin.
var errHidden = errors.New("film not published")

type detailData struct {
	viewdata.BaseVM
	Film         models.Film
	Comments     []models.Comment
	CommentError string
	MaxComment   int
	// Playable is set when the video URL can be framed; other URLs get a link.
	Playable bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /movie/{id}                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data, err := h.loadDetail(ctx, id, authz.IsAdmin(r))
	if err != nil {
		h.detailError(w, r, err)
		return
	}
	h.renderDetail(w, r, data)
}

// filmID parses the {id} route parameter, answering 404 when it is not an id.
func (h *Handler) filmID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		h.ErrLog.NotFound(w, r, h.Msg.Message("film.not_found", nil, locale.Languages(r)...), "/home")
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadDetail fetches the film and its comments. Drafts are hidden from
// non-admins.
func (h *Handler) loadDetail(ctx context.Context, id primitive.ObjectID, admin bool) (detailData, error) {
	f, err := h.Films.Get(ctx, id)
	if err != nil {
		return detailData{}, err
	}
	if !f.Published && !admin {
		return detailData{}, errHidden
	}
	comments, err := h.Comments.List(ctx, id)
	if err != nil {
		return detailData{}, err
	}
	return detailData{
		Film:       f,
		Comments:   comments,
		MaxComment: commentstore.MaxTextLength,
		Playable:   videourl.IsEmbed(f.VideoURL),
	}, nil
}

func (h *Handler) detailError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, filmstore.ErrNotFound) || errors.Is(err, errHidden) {
		h.ErrLog.NotFound(w, r, h.Msg.Message("film.not_found", nil, locale.Languages(r)...), "/home")
		return
	}
	h.ErrLog.LogServerError(w, r, "load film detail failed", err, h.Msg.Message("film.load_failed", nil, locale.Languages(r)...), "/home")
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, data detailData) {
	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "detail-wrap" {
		// A nil writer leaves the pending flash for the next full page.
		data.BaseVM = viewdata.NewBaseVM(nil, r, data.Film.Title, "/home")
		templates.RenderSnippet(w, "movie_detail_body", data)
		return
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, data.Film.Title, "/home")
	templates.Render(w, r, "movie_detail", data)
}
