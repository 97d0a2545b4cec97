// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	metricsstore "github.com/dalemusser/filmhub/internal/app/store/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Films is the film store as the admin area uses it.
type Films interface {
	ListAll(ctx context.Context) ([]models.Film, error)
	ListPublished(ctx context.Context) ([]models.Film, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Film, error)
	Create(ctx context.Context, d filmstore.Draft) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, p filmstore.Patch) error
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	WatchAll(ctx context.Context) (*livequery.Subscription[[]models.Film], error)
	WatchPublished(ctx context.Context) (*livequery.Subscription[[]models.Film], error)
}

// CountsFunc returns the dashboard totals.
type CountsFunc func(ctx context.Context) metricsstore.Counts

// Messages localizes user-facing text.
type Messages interface {
	Message(id string, data map[string]any, langs ...string) string
}

// Flasher queues a message for the next rendered page.
type Flasher interface {
	SetFlash(w http.ResponseWriter, r *http.Request, f auth.Flash)
}

type Handler struct {
	Films  Films
	Counts CountsFunc
	Msg    Messages
	Flash  Flasher
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(films Films, counts CountsFunc, msg Messages, flash Flasher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Films:  films,
		Counts: counts,
		Msg:    msg,
		Flash:  flash,
		ErrLog: errLog,
		Log:    logger,
	}
}

// Dashboard filters.
const (
	FilterAll       = "all"
	FilterPublished = "published"
)

// parseFilter maps anything but "published" to "all".
func parseFilter(s string) string {
	if s == FilterPublished {
		return FilterPublished
	}
	return FilterAll
}
