package register_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	"github.com/dalemusser/filmhub/internal/app/features/register"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/testutil"
	"go.uber.org/zap"
)

type registerCall struct {
	name, email, password string
}

type fakeRegistrar struct {
	result auth.Result
	calls  []registerCall
}

func (f *fakeRegistrar) Register(_ context.Context, _, name, email, password string, _ ...string) auth.Result {
	f.calls = append(f.calls, registerCall{name, email, password})
	return f.result
}

type fakeFlash struct {
	flashes []auth.Flash
}

func (f *fakeFlash) SetFlash(_ http.ResponseWriter, _ *http.Request, fl auth.Flash) {
	f.flashes = append(f.flashes, fl)
}

func newTestHandler(result auth.Result) (*register.Handler, *fakeRegistrar, *fakeFlash) {
	logger := zap.NewNop()
	fr := &fakeRegistrar{result: result}
	ff := &fakeFlash{}
	return register.NewHandler(fr, ff, uierrors.NewErrorLogger(logger), 6, logger), fr, ff
}

// serve runs fn, tolerating template panics: templates are not booted in tests.
func serve(fn http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() { _ = recover() }()
	fn(w, r)
}

func TestHandleRegisterPost_SuccessRedirectsToLogin(t *testing.T) {
	h, fr, ff := newTestHandler(auth.Result{
		Success: true,
		Message: "Registrasi berhasil! Silakan login.",
		User:    testutil.RegularUser(),
	})

	body := url.Values{"name": {" Budi "}, "email": {"budi@example.com"}, "password": {"secret123"}}.Encode()
	rec := testutil.NewRecorder()
	h.HandleRegisterPost(rec, testutil.NewFormRequest("/register", body, nil))

	rec.AssertRedirect(t, "/login")
	if len(fr.calls) != 1 || fr.calls[0].name != "Budi" || fr.calls[0].email != "budi@example.com" {
		t.Errorf("Register calls = %+v", fr.calls)
	}
	if len(ff.flashes) != 1 || !strings.Contains(ff.flashes[0].Message, "Registrasi berhasil") {
		t.Errorf("flashes = %+v", ff.flashes)
	}
}

func TestHandleRegisterPost_BlankNameIsAllowed(t *testing.T) {
	h, fr, _ := newTestHandler(auth.Result{Success: true, User: testutil.RegularUser()})

	body := url.Values{"email": {"budi@example.com"}, "password": {"secret123"}}.Encode()
	rec := testutil.NewRecorder()
	h.HandleRegisterPost(rec, testutil.NewFormRequest("/register", body, nil))

	rec.AssertRedirect(t, "/login")
	if len(fr.calls) != 1 || fr.calls[0].name != "" {
		t.Errorf("Register calls = %+v", fr.calls)
	}
}

func TestHandleRegisterPost_InvalidInputSkipsProvider(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", url.Values{"password": {"secret123"}}},
		{"bad email", url.Values{"email": {"nope"}, "password": {"secret123"}}},
		{"missing password", url.Values{"email": {"budi@example.com"}}},
		{"name too long", url.Values{"name": {strings.Repeat("x", 101)}, "email": {"budi@example.com"}, "password": {"secret123"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fr, _ := newTestHandler(auth.Result{Success: true, User: testutil.RegularUser()})
			rec := httptest.NewRecorder()
			serve(h.HandleRegisterPost, rec, testutil.NewFormRequest("/register", tt.form.Encode(), nil))

			if len(fr.calls) != 0 {
				t.Errorf("Register called %d times, want 0", len(fr.calls))
			}
			if loc := rec.Header().Get("Location"); loc != "" {
				t.Errorf("unexpected redirect to %q", loc)
			}
		})
	}
}

func TestHandleRegisterPost_ProviderFailureStaysOnForm(t *testing.T) {
	h, _, ff := newTestHandler(auth.Result{Message: "Email sudah digunakan."})

	body := url.Values{"email": {"budi@example.com"}, "password": {"secret123"}}.Encode()
	rec := httptest.NewRecorder()
	serve(h.HandleRegisterPost, rec, testutil.NewFormRequest("/register", body, nil))

	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}
	if len(ff.flashes) != 0 {
		t.Errorf("unexpected flash %+v", ff.flashes)
	}
}
