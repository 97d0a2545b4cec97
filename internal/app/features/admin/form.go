// internal/app/features/admin/form.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/inputval"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/navigation"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// filmInput is the add/edit form. The year upper bound moves with the
// clock, so it is checked after the struct rules.
type filmInput struct {
	Title       string  `validate:"required,max=200" label:"Judul"`
	Description string  `validate:"max=5000" label:"Deskripsi"`
	Genre       string  `validate:"omitempty,genre" label:"Genre"`
	Year        int     `validate:"gte=1888" label:"Tahun"`
	Rating      float64 `validate:"gte=0,lte=5" label:"Rating"`
	Poster      string  `validate:"omitempty,httpurl" label:"Poster URL"`
	VideoURL    string  `validate:"omitempty,httpurl" label:"Video URL"`
	Published   bool
}

type formData struct {
	viewdata.BaseVM
	Form    filmInput
	Action  string
	Filter  string
	Error   string
	Genres  []string
	YearMin int
	YearMax int
}

// now is swapped in tests.
var now = time.Now

// readForm parses and validates the posted film. A non-empty message means
// the input was rejected.
func (h *Handler) readForm(r *http.Request) (filmInput, string) {
	langs := locale.Languages(r)
	in := filmInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Genre:       strings.TrimSpace(r.FormValue("genre")),
		Poster:      strings.TrimSpace(r.FormValue("poster")),
		VideoURL:    strings.TrimSpace(r.FormValue("video_url")),
		Published:   r.FormValue("published") == "true",
	}

	year, err := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
	if err != nil {
		return in, h.Msg.Message("film.year_nan", nil, langs...)
	}
	in.Year = year

	rating, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("rating")), 64)
	if err != nil {
		return in, h.Msg.Message("film.rating_nan", nil, langs...)
	}
	in.Rating = rating

	if res := inputval.Validate(in); res.HasErrors() {
		return in, res.First()
	}
	if latest := models.YearMax(now()); in.Year > latest {
		return in, h.Msg.Message("film.year_max", map[string]any{"Max": latest}, langs...)
	}
	in.Genre = inputval.CanonicalGenre(in.Genre)
	return in, ""
}

func inputFromFilm(f models.Film) filmInput {
	return filmInput{
		Title:       f.Title,
		Description: f.Description,
		Genre:       f.Genre,
		Year:        f.Year,
		Rating:      f.Rating,
		Poster:      f.Poster,
		VideoURL:    f.VideoURL,
		Published:   f.Published,
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, title, action string, in filmInput, errMsg string) {
	templates.Render(w, r, "admin_film_form", formData{
		BaseVM:  viewdata.NewBaseVM(w, r, title, navigation.SafeBackURL(r, navigation.AdminBackURL)),
		Form:    in,
		Action:  action,
		Filter:  parseFilter(r.FormValue("filter")),
		Error:   errMsg,
		Genres:  models.Genres,
		YearMin: models.YearMin,
		YearMax: models.YearMax(now()),
	})
}

// done flashes msg and returns to the dashboard, keeping its filter.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, msg string, isErr bool) {
	h.Flash.SetFlash(w, r, auth.Flash{Message: msg, Error: isErr})
	navigation.Redirect(w, r, navigation.SafeBackURL(r, navigation.AdminBackURL))
}

// filmID parses the {id} route parameter, answering 404 when it is not an id.
func (h *Handler) filmID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		h.ErrLog.NotFound(w, r, h.Msg.Message("film.not_found", nil, locale.Languages(r)...), "/admin")
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Add                                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// GET /admin/film/add
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Tambah Film", "/admin/film/add", filmInput{Year: now().Year()}, "")
}

// POST /admin/film/add
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin")
		return
	}
	langs := locale.Languages(r)

	in, msg := h.readForm(r)
	if msg != "" {
		h.renderForm(w, r, "Tambah Film", "/admin/film/add", in, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	published := in.Published
	id, err := h.Films.Create(ctx, filmstore.Draft{
		Title:       in.Title,
		Description: in.Description,
		Genre:       in.Genre,
		Year:        in.Year,
		Rating:      in.Rating,
		Poster:      in.Poster,
		VideoURL:    in.VideoURL,
		Published:   &published,
	})
	if err != nil {
		h.Log.Error("create film failed", zap.String("title", in.Title), zap.Error(err))
		h.renderForm(w, r, "Tambah Film", "/admin/film/add", in, h.Msg.Message("film.create_failed", nil, langs...))
		return
	}

	metrics.FilmWrites.WithLabelValues("create").Inc()
	h.Log.Info("film created", zap.String("film_id", id.Hex()))
	h.done(w, r, h.Msg.Message("film.created", nil, langs...), false)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Edit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// GET /admin/film/edit/{id}
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	f, err := h.Films.Get(ctx, id)
	if errors.Is(err, filmstore.ErrNotFound) {
		h.done(w, r, h.Msg.Message("film.not_found", nil, locale.Languages(r)...), true)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load film failed", err, h.Msg.Message("film.load_failed", nil, locale.Languages(r)...), "/admin")
		return
	}
	h.renderForm(w, r, "Edit Film", "/admin/film/edit/"+id.Hex(), inputFromFilm(f), "")
}

// POST /admin/film/edit/{id}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin")
		return
	}
	langs := locale.Languages(r)
	action := "/admin/film/edit/" + id.Hex()

	in, msg := h.readForm(r)
	if msg != "" {
		h.renderForm(w, r, "Edit Film", action, in, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Films.Update(ctx, id, filmstore.Patch{
		Title:       &in.Title,
		Description: &in.Description,
		Genre:       &in.Genre,
		Year:        &in.Year,
		Rating:      &in.Rating,
		Poster:      &in.Poster,
		VideoURL:    &in.VideoURL,
		Published:   &in.Published,
	})
	switch {
	case errors.Is(err, filmstore.ErrNotFound):
		h.done(w, r, h.Msg.Message("film.not_found", nil, langs...), true)
		return
	case err != nil:
		h.Log.Error("update film failed", zap.String("film_id", id.Hex()), zap.Error(err))
		h.renderForm(w, r, "Edit Film", action, in, h.Msg.Message("film.update_failed", nil, langs...))
		return
	}

	metrics.FilmWrites.WithLabelValues("update").Inc()
	h.done(w, r, h.Msg.Message("film.updated", nil, langs...), false)
}
