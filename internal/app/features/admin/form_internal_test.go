package admin

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/testutil"
	"go.uber.org/zap"
)

func formRequest(values url.Values, lang string) *http.Request {
	r := testutil.NewFormRequest("/admin/film/add", values.Encode(), testutil.AdminUser())
	if lang != "" {
		r.AddCookie(&http.Cookie{Name: locale.CookieName, Value: lang})
	}
	_ = r.ParseForm()
	return r
}

func TestReadForm_MessagesFollowLanguage(t *testing.T) {
	tr, err := locale.New("id", zap.NewNop())
	if err != nil {
		t.Fatalf("locale.New: %v", err)
	}
	h := &Handler{Msg: tr}

	restore := now
	now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = restore })

	base := func(year, rating string) url.Values {
		return url.Values{"title": {"Ngeri-Ngeri Sedap"}, "year": {year}, "rating": {rating}}
	}

	tests := []struct {
		name   string
		values url.Values
		lang   string
		want   string
	}{
		{"year too late en", base("2999", "4"), "en", "Year must be at most 2036."},
		{"year too late id", base("2999", "4"), "id", "Tahun paling lambat 2036."},
		{"year not a number en", base("soon", "4"), "en", "Year must be a number."},
		{"rating not a number en", base("2022", "good"), "en", "Rating must be a number."},
		{"rating not a number default", base("2022", "good"), "", "Rating harus berupa angka."},
		{"valid", base("2022", "4.5"), "en", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msg := h.readForm(formRequest(tt.values, tt.lang))
			if msg != tt.want {
				t.Errorf("msg = %q, want %q", msg, tt.want)
			}
		})
	}
}
