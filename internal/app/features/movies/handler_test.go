package movies_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	"github.com/dalemusser/filmhub/internal/app/features/movies"
	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	filmstore "github.com/dalemusser/filmhub/internal/app/store/films"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/changefeed"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"github.com/dalemusser/filmhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
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

type testEnv struct {
	h        *movies.Handler
	fx       *testutil.Fixtures
	comments *commentstore.Store
	flash    *fakeFlash
	tr       *locale.Translator
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
	comments := commentstore.New(db, feed)
	flash := &fakeFlash{}
	h := movies.NewHandler(films, comments, feed, tr, flash, uierrors.NewErrorLogger(logger), logger)

	return &testEnv{h: h, fx: testutil.NewFixtures(t, db), comments: comments, flash: flash, tr: tr}
}

// serve runs fn, tolerating template panics: templates are not booted in tests.
func serve(fn http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() { _ = recover() }()
	fn(w, r)
}

func (e *testEnv) commentCount(t *testing.T, filmID primitive.ObjectID) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := e.fx.DB().Collection("film_comments").CountDocuments(ctx, bson.M{"film_id": filmID})
	if err != nil {
		t.Fatalf("count comments: %v", err)
	}
	return n
}

func commentRequest(filmID primitive.ObjectID, text string, user *models.User) *http.Request {
	body := url.Values{"text": {text}}.Encode()
	req := testutil.NewFormRequest("/movie/"+filmID.Hex()+"/comments", body, user)
	return testutil.WithChiURLParam(req, "id", filmID.Hex())
}

/*─────────────────────────────────────────────────────────────────────────────*
| Comments                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func TestHandleComment_UnauthenticatedWritesNothing(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "The Raid", true, 0)

	rec := testutil.NewRecorder()
	e.h.HandleComment(rec, commentRequest(film.ID, "mantap", nil))

	rec.AssertRedirect(t, "/login")
	if n := e.commentCount(t, film.ID); n != 0 {
		t.Errorf("comments written = %d, want 0", n)
	}
	if len(e.flash.flashes) != 1 || !e.flash.flashes[0].Error {
		t.Errorf("flashes = %+v, want one error", e.flash.flashes)
	}
}

func TestHandleComment_UnauthenticatedHTMX(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "The Raid", true, 0)

	req := commentRequest(film.ID, "mantap", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e.h.HandleComment(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}
	if n := e.commentCount(t, film.ID); n != 0 {
		t.Errorf("comments written = %d, want 0", n)
	}
}

func TestHandleComment_SignedInAppends(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "The Raid", true, 0)
	user := &models.User{UID: "u-1", Email: "budi@example.com", Role: models.RoleUser}

	rec := testutil.NewRecorder()
	e.h.HandleComment(rec, commentRequest(film.ID, "  <b>Mantap</b> ", user))

	rec.AssertRedirect(t, "/movie/"+film.ID.Hex()+"#comments")
	list, err := e.comments.List(ctx, film.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("comments = %d, want 1", len(list))
	}
	if list[0].UserID != "u-1" || list[0].UserName != "budi@example.com" || list[0].Text != "Mantap" {
		t.Errorf("comment = %+v", list[0])
	}
	if len(e.flash.flashes) != 0 {
		t.Errorf("unexpected flash %+v", e.flash.flashes)
	}
}

func TestHandleComment_EmptyTextFlashesError(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "The Raid", true, 0)

	rec := testutil.NewRecorder()
	e.h.HandleComment(rec, commentRequest(film.ID, "   ", testutil.RegularUser()))

	rec.AssertRedirect(t, "/movie/"+film.ID.Hex()+"#comments")
	if n := e.commentCount(t, film.ID); n != 0 {
		t.Errorf("comments written = %d, want 0", n)
	}
	want := e.tr.Message("comment.empty", nil)
	if len(e.flash.flashes) != 1 || e.flash.flashes[0].Message != want {
		t.Errorf("flashes = %+v, want %q", e.flash.flashes, want)
	}
}

func TestHandleComment_DraftHiddenFromUsers(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "Draft", false, 0)

	req := commentRequest(film.ID, "halo", testutil.RegularUser())
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	e.h.HandleComment(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if n := e.commentCount(t, film.ID); n != 0 {
		t.Errorf("comments written = %d, want 0", n)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Detail                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func detailRequest(id string, user *models.User) *http.Request {
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/movie/"+id, user)
	req.Header.Set("Accept", "application/json")
	return testutil.WithChiURLParam(req, "id", id)
}

func TestServeDetail_NotFound(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	draft := e.fx.CreateFilm(ctx, "Draft", false, 0)

	tests := []struct {
		name string
		id   string
	}{
		{"malformed id", "not-an-id"},
		{"unknown id", primitive.NewObjectID().Hex()},
		{"draft for user", draft.ID.Hex()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.h.ServeDetail(rec, detailRequest(tt.id, testutil.RegularUser()))
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestServeDetail_AdminSeesDraft(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	draft := e.fx.CreateFilm(ctx, "Draft", false, 0)

	rec := httptest.NewRecorder()
	serve(e.h.ServeDetail, rec, detailRequest(draft.ID.Hex(), testutil.AdminUser()))

	if rec.Code == http.StatusNotFound {
		t.Errorf("admin got 404 for a draft")
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Live                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type detailFrame struct {
	Type string `json:"type"`
	Data struct {
		Film *struct {
			Title string `json:"title"`
		} `json:"film"`
		Comments []struct {
			Text string `json:"text"`
		} `json:"comments"`
	} `json:"data"`
}

func TestServeDetailLive_PushesNewComments(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	film := e.fx.CreateFilm(ctx, "The Raid", true, 0)
	user := testutil.RegularUser()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, testutil.WithUser(r, user))
		})
	})
	r.Mount("/movie", movies.DetailRoutes(e.h))
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/movie/" + film.ID.Hex() + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var f detailFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read initial frame: %v", err)
	}
	if f.Type != "detail" || f.Data.Film == nil || f.Data.Film.Title != "The Raid" || len(f.Data.Comments) != 0 {
		t.Fatalf("initial frame = %+v", f)
	}

	if _, err := e.comments.Append(context.Background(), film.ID, commentstore.Actor{ID: user.UID, Name: user.Name}, "keren"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read update frame: %v", err)
	}
	if len(f.Data.Comments) != 1 || f.Data.Comments[0].Text != "keren" {
		t.Errorf("update frame comments = %+v", f.Data.Comments)
	}
}
