// Package gates guards navigation into protected areas.
//
// A Gate inspects the signed-in user and either lets the request through or
// names where to send it instead. Routes chain gates with Middleware; the
// first gate that refuses wins and the handler never runs.
//
// Every gate sees exactly one value of the session's user stream per
// request: the user as it stands when the request arrives.
package gates

import (
	"net/http"
	"strings"

	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/domain/models"
)

// Decision is the outcome of evaluating a gate.
type Decision struct {
	Allow    bool
	Redirect string
	Status   int
}

// Allowed lets the request through.
var Allowed = Decision{Allow: true}

func deny(to string, status int) Decision {
	return Decision{Redirect: to, Status: status}
}

// Gate decides whether u may enter.
type Gate interface {
	Evaluate(u *models.User) Decision
}

// GateFunc adapts a function to Gate.
type GateFunc func(u *models.User) Decision

func (f GateFunc) Evaluate(u *models.User) Decision { return f(u) }

// Authenticated passes any signed-in user. With expected roles, a user
// holding none of them is sent to /not-authorized.
func Authenticated(expected ...models.Role) Gate {
	return GateFunc(func(u *models.User) Decision {
		if u == nil {
			return deny("/login", http.StatusUnauthorized)
		}
		if len(expected) == 0 {
			return Allowed
		}
		for _, role := range expected {
			if u.Role == role {
				return Allowed
			}
		}
		return deny("/not-authorized", http.StatusForbidden)
	})
}

// Admin passes admins and sends everyone else to /home.
func Admin() Gate {
	return GateFunc(func(u *models.User) Decision {
		if u.IsAdmin() {
			return Allowed
		}
		if u == nil {
			return deny("/home", http.StatusUnauthorized)
		}
		return deny("/home", http.StatusForbidden)
	})
}

// AnyUser passes any signed-in user regardless of role.
func AnyUser() Gate {
	return GateFunc(func(u *models.User) Decision {
		if u == nil {
			return deny("/login", http.StatusUnauthorized)
		}
		return Allowed
	})
}

// Check evaluates gs in order against the request's user and returns the
// first refusal, or Allowed.
func Check(r *http.Request, gs ...Gate) Decision {
	var u *models.User
	if s, ok := auth.SessionFrom(r); ok {
		// A context that ends before the first value leaves u nil.
		u, _ = s.First(r.Context())
	}
	for _, g := range gs {
		if d := g.Evaluate(u); !d.Allow {
			return d
		}
	}
	return Allowed
}

// Middleware runs Check before next and redirects on refusal.
func Middleware(gs ...Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Check(r, gs...)
			if !d.Allow {
				Refuse(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Refuse sends the client where d points.
//   - HTMX: HX-Redirect header with the decision's status
//   - HTML: 303 redirect
//   - API:  plain status code
func Refuse(w http.ResponseWriter, r *http.Request, d Decision) {
	status := d.Status
	if status == 0 {
		status = http.StatusForbidden
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", d.Redirect)
		w.WriteHeader(status)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		return
	}

	http.Error(w, strings.ToLower(http.StatusText(status)), status)
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
