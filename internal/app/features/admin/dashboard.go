// internal/app/features/admin/dashboard.go
package admin

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/filmhub/internal/app/store/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/livepush"
	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type dashboardData struct {
	viewdata.BaseVM
	Filter        string
	Counts        metricsstore.Counts
	Films         []models.Film
	LoadError     string
	DeleteConfirm string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin?filter=all|published                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(query.Get(r, "filter"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := dashboardData{
		Filter:        filter,
		DeleteConfirm: h.Msg.Message("film.delete_confirm", nil, locale.Languages(r)...),
	}
	films, err := h.list(ctx, filter)
	if err != nil {
		h.Log.Error("admin list films failed", zap.String("filter", filter), zap.Error(err))
		data.LoadError = h.Msg.Message("film.load_failed", nil, locale.Languages(r)...)
	}
	data.Films = films

	// Filter tabs and live refreshes swap only the table. The snippet still
	// carries forms, so it needs the CSRF token.
	if r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Target") == "admin-films-wrap" {
		data.BaseVM = viewdata.NewBaseVM(nil, r, "Dashboard Admin", "/admin")
		templates.RenderSnippet(w, "admin_films", data)
		return
	}

	if h.Counts != nil {
		data.Counts = h.Counts(ctx)
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, "Dashboard Admin", "/admin")
	templates.Render(w, r, "admin_dashboard", data)
}

func (h *Handler) list(ctx context.Context, filter string) ([]models.Film, error) {
	if filter == FilterPublished {
		return h.Films.ListPublished(ctx)
	}
	return h.Films.ListAll(ctx)
}

// ServeLive pushes the filtered film list on every change.
// GET /admin/live?filter=all|published (websocket)
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var (
		sub *livequery.Subscription[[]models.Film]
		err error
	)
	if parseFilter(query.Get(r, "filter")) == FilterPublished {
		sub, err = h.Films.WatchPublished(r.Context())
	} else {
		sub, err = h.Films.WatchAll(r.Context())
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "watch films failed", err, h.Msg.Message("film.load_failed", nil, locale.Languages(r)...), "/admin")
		return
	}
	livepush.Stream(w, r, "admin", "films", sub, livepush.SignedOut(r.Context(), sess), h.Log)
}
