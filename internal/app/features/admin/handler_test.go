package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/filmhub/internal/app/features/admin"
	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	metricsstore "github.com/dalemusser/filmhub/internal/app/store/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeFlash struct {
	flashes []auth.Flash
}

func (f *fakeFlash) SetFlash(_ http.ResponseWriter, _ *http.Request, fl auth.Flash) {
	f.flashes = append(f.flashes, fl)
}

func (f *fakeFlash) last(t *testing.T) auth.Flash {
	t.Helper()
	if len(f.flashes) == 0 {
		t.Fatal("no flash set")
	}
	return f.flashes[len(f.flashes)-1]
}

type testEnv struct {
	h     *admin.Handler
	fx    *testutil.Fixtures
	films *filmstore.Store
	flash *fakeFlash
	tr    *locale.Translator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	feed := changefeed.NewInProcess(logger)
	t.Cleanup(func() { _ = feed.Close() })

	tr, err := locale.New("id", logger)
	if err != nil {
		t.Fatalf("locale.New: %v", err)
	}

	films := filmstore.New(db, feed)
	counts := func(ctx context.Context) metricsstore.Counts { return metricsstore.FetchDashboardCounts(ctx, db) }
	flash := &fakeFlash{}
	h := admin.NewHandler(films, counts, tr, flash, uierrors.NewErrorLogger(logger), logger)
	return &testEnv{h: h, fx: testutil.NewFixtures(t, db), films: films, flash: flash, tr: tr}
}

// serve runs fn, tolerating template panics: templates are not booted in tests.
func serve(fn http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() { _ = recover() }()
	fn(w, r)
}

func (e *testEnv) filmCount(t *testing.T) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := e.fx.DB().Collection("films").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count films: %v", err)
	}
	return n
}

func validForm() url.Values {
	return url.Values{
		"title":       {"  The Raid  "},
		"description": {"Polisi terjebak di gedung."},
		"genre":       {"action"},
		"year":        {"2011"},
		"rating":      {"4.8"},
		"poster":      {"https://img.example.com/raid.jpg"},
		"video_url":   {"https://youtu.be/abc123XYZ_-"},
	}
}

func adminPost(target string, form url.Values, params ...string) *http.Request {
	req := testutil.NewFormRequest(target, form.Encode(), testutil.AdminUser())
	for i := 0; i+1 < len(params); i += 2 {
		req = testutil.WithChiURLParam(req, params[i], params[i+1])
	}
	return req
}

/*─────────────────────────────────────────────────────────────────────────────*
| Add                                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func TestHandleAdd_CreatesDraft(t *testing.T) {
	e := newTestEnv(t)

	rec := testutil.NewRecorder()
	e.h.HandleAdd(rec, adminPost("/admin/film/add", validForm()))

	rec.AssertRedirect(t, "/admin")
	if f := e.flash.last(t); f.Error || f.Message != e.tr.Message("film.created", nil) {
		t.Errorf("flash = %+v", f)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	all, err := e.films.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("films = %d, want 1", len(all))
	}
	f := all[0]
	if f.Title != "The Raid" || f.Genre != "Action" || f.Year != 2011 || f.Rating != 4.8 {
		t.Errorf("film = %+v", f)
	}
	if f.Published {
		t.Error("published without the checkbox")
	}
	if f.VideoURL != "https://www.youtube.com/embed/abc123XYZ_-" {
		t.Errorf("VideoURL = %q, want embed form", f.VideoURL)
	}
}

func TestHandleAdd_PublishedAndFilterKept(t *testing.T) {
	e := newTestEnv(t)
	form := validForm()
	form.Set("published", "true")
	form.Set("filter", "published")

	rec := testutil.NewRecorder()
	e.h.HandleAdd(rec, adminPost("/admin/film/add", form))

	rec.AssertRedirect(t, "/admin?filter=published")
	ctx, cancel := testutil.TestContext()
	defer cancel()
	pub, err := e.films.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(pub) != 1 {
		t.Errorf("published films = %d, want 1", len(pub))
	}
}

func TestHandleAdd_InvalidInputWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing title", "title", "  "},
		{"year not a number", "year", "dua ribu"},
		{"year too early", "year", "1700"},
		{"year too late", "year", "9999"},
		{"rating not a number", "rating", "bagus"},
		{"rating too high", "rating", "6"},
		{"rating negative", "rating", "-1"},
		{"unknown genre", "genre", "Western"},
		{"bad poster url", "poster", "ftp://img.example.com/x.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			form := validForm()
			form.Set(tt.field, tt.value)

			rec := httptest.NewRecorder()
			serve(e.h.HandleAdd, rec, adminPost("/admin/film/add", form))

			if loc := rec.Header().Get("Location"); loc != "" {
				t.Errorf("unexpected redirect to %q", loc)
			}
			if n := e.filmCount(t); n != 0 {
				t.Errorf("films written = %d, want 0", n)
			}
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Edit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func TestHandleEdit_UpdatesFilm(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "Old Title", false, time.Minute)

	form := validForm()
	form.Set("title", "New Title")
	form.Set("published", "true")

	rec := testutil.NewRecorder()
	e.h.HandleEdit(rec, adminPost("/admin/film/edit/"+film.ID.Hex(), form, "id", film.ID.Hex()))

	rec.AssertRedirect(t, "/admin")
	if f := e.flash.last(t); f.Error {
		t.Errorf("flash = %+v", f)
	}
	got, err := e.films.Get(ctx, film.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "New Title" || !got.Published || got.Genre != "Action" {
		t.Errorf("film = %+v", got)
	}
	if !got.UpdatedAt.After(film.UpdatedAt) {
		t.Errorf("updated_at not advanced: %v -> %v", film.UpdatedAt, got.UpdatedAt)
	}
}

func TestHandleEdit_UnknownFilm(t *testing.T) {
	e := newTestEnv(t)
	id := primitive.NewObjectID().Hex()

	rec := testutil.NewRecorder()
	e.h.HandleEdit(rec, adminPost("/admin/film/edit/"+id, validForm(), "id", id))

	rec.AssertRedirect(t, "/admin")
	if f := e.flash.last(t); !f.Error || f.Message != e.tr.Message("film.not_found", nil) {
		t.Errorf("flash = %+v", f)
	}
	if n := e.filmCount(t); n != 0 {
		t.Errorf("films = %d, want 0", n)
	}
}

func TestServeEdit_MalformedID(t *testing.T) {
	e := newTestEnv(t)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/film/edit/xyz", testutil.AdminUser())
	req.Header.Set("Accept", "application/json")
	req = testutil.WithChiURLParam(req, "id", "xyz")
	rec := httptest.NewRecorder()
	e.h.ServeEdit(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Publish / delete                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func TestHandlePublish_Toggles(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "Draft", false, 0)
	form := url.Values{"filter": {"published"}}

	rec := testutil.NewRecorder()
	e.h.HandlePublish(rec, adminPost("/admin/film/"+film.ID.Hex()+"/publish", form, "id", film.ID.Hex()))

	rec.AssertRedirect(t, "/admin?filter=published")
	if f := e.flash.last(t); f.Message != e.tr.Message("film.published", nil) {
		t.Errorf("flash = %+v", f)
	}
	got, err := e.films.Get(ctx, film.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Published {
		t.Fatal("film not published after toggle")
	}

	rec = testutil.NewRecorder()
	e.h.HandlePublish(rec, adminPost("/admin/film/"+film.ID.Hex()+"/publish", form, "id", film.ID.Hex()))
	if f := e.flash.last(t); f.Message != e.tr.Message("film.unpublished", nil) {
		t.Errorf("flash = %+v", f)
	}
	got, _ = e.films.Get(ctx, film.ID)
	if got.Published {
		t.Error("film still published after second toggle")
	}
}

func TestHandlePublish_ExplicitValue(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "Live", true, 0)

	rec := testutil.NewRecorder()
	e.h.HandlePublish(rec, adminPost("/admin/film/"+film.ID.Hex()+"/publish", url.Values{"published": {"true"}}, "id", film.ID.Hex()))

	rec.AssertRedirect(t, "/admin")
	got, _ := e.films.Get(ctx, film.ID)
	if !got.Published {
		t.Error("explicit published=true unpublished the film")
	}
}

func TestHandleDelete(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "Gone", true, 0)

	rec := testutil.NewRecorder()
	e.h.HandleDelete(rec, adminPost("/admin/film/"+film.ID.Hex()+"/delete", url.Values{}, "id", film.ID.Hex()))

	rec.AssertRedirect(t, "/admin")
	if f := e.flash.last(t); f.Error || f.Message != e.tr.Message("film.deleted", nil) {
		t.Errorf("flash = %+v", f)
	}
	if n := e.filmCount(t); n != 0 {
		t.Errorf("films = %d, want 0", n)
	}

	rec = testutil.NewRecorder()
	e.h.HandleDelete(rec, adminPost("/admin/film/"+film.ID.Hex()+"/delete", url.Values{}, "id", film.ID.Hex()))
	if f := e.flash.last(t); !f.Error {
		t.Errorf("second delete flash = %+v, want error", f)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Dashboard                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func TestServeDashboard_Renders(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateFilm(ctx, "A", true, 0)

	for _, target := range []string{"/admin", "/admin?filter=published", "/admin?filter=bogus"} {
		rec := httptest.NewRecorder()
		serve(e.h.ServeDashboard, rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, testutil.AdminUser()))
		if loc := rec.Header().Get("Location"); loc != "" {
			t.Errorf("%s: unexpected redirect to %q", target, loc)
		}
	}
}

func TestServeLive_RequiresSession(t *testing.T) {
	e := newTestEnv(t)
	rec := httptest.NewRecorder()
	e.h.ServeLive(rec, httptest.NewRequest(http.MethodGet, "/admin/live", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
