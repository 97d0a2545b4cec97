// internal/app/features/movies/handler.go
package movies

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/authz"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Films is the read side of the film store.
type Films interface {
	ListAll(ctx context.Context) ([]models.Film, error)
	ListPublished(ctx context.Context) ([]models.Film, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Film, error)
	WatchAll(ctx context.Context) (*livequery.Subscription[[]models.Film], error)
	WatchPublished(ctx context.Context) (*livequery.Subscription[[]models.Film], error)
}

// Comments is the comment store.
type Comments interface {
	List(ctx context.Context, filmID primitive.ObjectID) ([]models.Comment, error)
	Append(ctx context.Context, filmID primitive.ObjectID, actor commentstore.Actor, text string) (primitive.ObjectID, error)
}

// Feed delivers change notifications for several topics at once.
type Feed interface {
	ListenAll(ctx context.Context, topics ...string) (<-chan changefeed.Change, error)
}

// Messages localizes user-facing text.
type Messages interface {
	Message(id string, data map[string]any, langs ...string) string
}

// Flasher queues a message for the next rendered page.
type Flasher interface {
	SetFlash(w http.ResponseWriter, r *http.Request, f auth.Flash)
}

type Handler struct {
	Films    Films
	Comments Comments
	Feed     Feed
	Msg      Messages
	Flash    Flasher
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(films Films, comments Comments, feed Feed, msg Messages, flash Flasher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Films:    films,
		Comments: comments,
		Feed:     feed,
		Msg:      msg,
		Flash:    flash,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type listData struct {
	viewdata.BaseVM
	Films     []models.Film
	LoadError string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /movies – admins see drafts too                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var data listData
	films, err := h.list(ctx, authz.IsAdmin(r))
	if err != nil {
		h.Log.Error("list films failed", zap.Error(err))
		data.LoadError = h.Msg.Message("film.load_failed", nil, locale.Languages(r)...)
	}
	data.Films = films

	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "movies-wrap" {
		templates.RenderSnippet(w, "movies_list", data)
		return
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, "Daftar Film", "/home")
	templates.Render(w, r, "movies", data)
}

func (h *Handler) list(ctx context.Context, admin bool) ([]models.Film, error) {
	if admin {
		return h.Films.ListAll(ctx)
	}
	return h.Films.ListPublished(ctx)
}
