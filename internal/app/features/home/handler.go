// internal/app/features/home/handler.go
package home

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/livepush"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/search"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// PublishedFilms is the read side of the film store the catalog needs.
type PublishedFilms interface {
	ListPublished(ctx context.Context) ([]models.Film, error)
	WatchPublished(ctx context.Context) (*livequery.Subscription[[]models.Film], error)
}

// Messages translates user-facing text.
type Messages interface {
	Message(id string, data map[string]any, langs ...string) string
}

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Films  PublishedFilms
	Msg    Messages
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(films PublishedFilms, msg Messages, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Films:  films,
		Msg:    msg,
		ErrLog: errLog,
		Log:    logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	Query     search.Query
	Genres    []string
	Films     []models.Film
	LoadError string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /home – published catalog with search, genre and sort                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	q := search.Query{
		Text:  query.Get(r, "q"),
		Genre: query.Get(r, "genre"),
		Sort:  query.Get(r, "sort"),
	}.Normalize()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := homeData{Query: q, Genres: models.Genres}
	films, err := h.Films.ListPublished(ctx)
	if err != nil {
		h.Log.Error("list published films failed", zap.Error(err))
		data.LoadError = h.Msg.Message("film.load_failed", nil, locale.Languages(r)...)
	} else {
		data.Films = search.Films(films, q)
	}

	// HTMX filter changes and live refreshes only swap the film grid.
	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "films-wrap" {
		templates.RenderSnippet(w, "home_films", data)
		return
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, "Beranda", "/home")
	templates.Render(w, r, "home", data)
}

// ServeLive pushes a frame whenever the published catalog changes. The page
// re-fetches its grid on each frame.
// GET /home/live (websocket)
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sub, err := h.Films.WatchPublished(r.Context())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "watch published films failed", err, h.Msg.Message("film.load_failed", nil, locale.Languages(r)...), "/home")
		return
	}
	livepush.Stream(w, r, "home", "films", sub, livepush.SignedOut(r.Context(), sess), h.Log)
}
