package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/filmhub/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Great movie!", "Great movie!"},
		{"trims", "  nice  ", "nice"},
		{"strips tags", "<b>Bold</b> claim", "Bold claim"},
		{"drops script", "Hi<script>alert('x')</script>", "Hi"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"keeps quotes", `He said "wow"`, `He said "wow"`},
		{"drops handlers", `<img src=x onerror="alert(1)">text`, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
