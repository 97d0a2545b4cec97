// Package videourl rewrites shareable YouTube links into their embeddable form.
package videourl

import (
	"regexp"
	"strings"
)

const embedPrefix = "https://www.youtube.com/embed/"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([^&]+)`),
	regexp.MustCompile(`(?:https?://)?youtu\.be/([^?&]+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([^?&]+)`),
}

// Normalize returns the embed URL for watch, short-link and shorts URLs.
// Any other input, including an existing embed URL, is returned unchanged.
// Blank input yields "".
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return embedPrefix + m[1]
		}
	}
	return s
}

// IsEmbed reports whether u is already in embed form.
func IsEmbed(u string) bool {
	return strings.HasPrefix(u, embedPrefix) && len(u) > len(embedPrefix)
}
