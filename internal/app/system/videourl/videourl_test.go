package videourl

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123"},
		{"watch url extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "https://www.youtube.com/embed/abc123"},
		{"watch url no scheme", "youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123"},
		{"watch url http no www", "http://youtube.com/watch?v=XyZ_-9", "https://www.youtube.com/embed/XyZ_-9"},
		{"short link", "https://youtu.be/abc123", "https://www.youtube.com/embed/abc123"},
		{"short link with query", "https://youtu.be/abc123?si=share", "https://www.youtube.com/embed/abc123"},
		{"short link no scheme", "youtu.be/abc123", "https://www.youtube.com/embed/abc123"},
		{"shorts", "https://www.youtube.com/shorts/abc123", "https://www.youtube.com/embed/abc123"},
		{"shorts with query", "https://youtube.com/shorts/abc123?feature=share", "https://www.youtube.com/embed/abc123"},
		{"already embed", "https://www.youtube.com/embed/abc123", "https://www.youtube.com/embed/abc123"},
		{"other host", "https://vimeo.com/12345", "https://vimeo.com/12345"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://youtu.be/abc123",
		"https://www.youtube.com/shorts/abc123",
		"https://example.com/video.mp4",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsEmbed(t *testing.T) {
	if !IsEmbed("https://www.youtube.com/embed/abc") {
		t.Error("expected embed url to be recognised")
	}
	if IsEmbed("https://www.youtube.com/embed/") {
		t.Error("bare embed prefix should not count")
	}
	if IsEmbed("https://youtu.be/abc") {
		t.Error("short link is not an embed url")
	}
}
