// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/filmhub/internal/domain/models"
)

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...models.Role) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == want {
			return true
		}
	}
	return false
}

// HomePath is where a user lands after signing in: admins go to the
// dashboard, everyone else to the catalog.
func HomePath(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/home"
}
