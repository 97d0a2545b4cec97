package navigation

import "net/http"

// Redirect sends the browser to to. HTMX requests get an HX-Redirect header
// so the whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
