// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the page header and title.
const SiteName = "FilmHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from session middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// One-shot message carried across a redirect
	Flash      string
	FlashError bool
}

// FlashSource pops the pending flash for a request.
// This is set by bootstrap to avoid circular dependencies.
type FlashSource func(w http.ResponseWriter, r *http.Request) (auth.Flash, bool)

var flashSource FlashSource

// SetFlashSource sets the function used to pop flash messages.
// Call this once at startup from bootstrap after the session manager exists.
func SetFlashSource(fn FlashSource) {
	flashSource = fn
}

// NewBaseVM creates a fully populated BaseVM for a page. Building one
// consumes the client's pending flash, so call it only for pages that render.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		IsAdmin:     authz.IsAdmin(r),
		Role:        string(role),
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if flashSource != nil && w != nil {
		if f, ok := flashSource(w, r); ok {
			vm.Flash = f.Message
			vm.FlashError = f.Error
		}
	}
	return vm
}
