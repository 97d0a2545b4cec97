// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotAuthorized renders the page a signed-in user lands on when their role
// does not match the area they tried to enter.
// GET /not-authorized
func (h *Handler) NotAuthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	render(w, r, "Akses ditolak", "Anda tidak memiliki izin untuk membuka halaman ini.", "/home")
}

// NotFound sends unknown paths to the login page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func render(w http.ResponseWriter, r *http.Request, title, msg, backURL string) {
	vm := viewdata.NewBaseVM(w, r, title, backURL)
	if backURL != "" {
		vm.BackURL = backURL
	}
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: msg})
}
