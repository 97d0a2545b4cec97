// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/admin").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/delete").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string

	// PreserveQueryParam is an optional query parameter carried onto the
	// fallback URL, e.g. the dashboard "filter". The value "all" is dropped.
	PreserveQueryParam string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks the "return" query parameter and then the form value, rejects
// anything that is not a local path (open redirects), and applies the
// prefix and excluded-subpath rules from opts.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	if ret != "" && allowed(ret, opts) {
		return ret
	}

	fallback := opts.Fallback
	if opts.PreserveQueryParam == "" {
		return fallback
	}
	param := query.Get(r, opts.PreserveQueryParam)
	if param == "" {
		param = strings.TrimSpace(r.FormValue(opts.PreserveQueryParam))
	}
	if param == "" || param == "all" {
		return fallback
	}
	sep := "?"
	if strings.Contains(fallback, "?") {
		sep = "&"
	}
	return fallback + sep + opts.PreserveQueryParam + "=" + param
}

func allowed(ret string, opts BackURLOptions) bool {
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return false
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return false
		}
	}
	return true
}

// AdminBackURL returns to the dashboard, keeping its filter.
var AdminBackURL = BackURLOptions{
	AllowedPrefix:      "/admin",
	ExcludedSubpaths:   []string{"/film/"},
	Fallback:           "/admin",
	PreserveQueryParam: "filter",
}
