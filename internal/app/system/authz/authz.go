// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/domain/models"
)

// UserCtx returns the user's role, display name, uid, and a found flag.
// If no user is signed in it returns "", "", "", false, so callers can
// trust that ok=true means an authenticated user with a uid.
func UserCtx(r *http.Request) (role models.Role, name string, uid string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.UID == "" {
		return "", "", "", false
	}
	return user.Role, models.DisplayName(user.Name, user.Email), user.UID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	return HasAnyRole(r, models.RoleAdmin)
}
