// internal/domain/models/user.go
package models

import (
	"strings"
	"time"
)

// Role is the closed set of access levels a profile can carry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string onto the closed Role set.
// Anything that is not "admin" is a plain user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// FallbackName is shown when a profile has no name, display name or email.
const FallbackName = "Anonim"

// User is the application profile of an authenticated identity.
//
// NOTE:
//   - UID is the identity provider's id, used as the document key.
//   - The JSON form is what gets cached in a client's session storage.
type User struct {
	UID   string `bson:"_id" json:"uid"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name" json:"name"`
	Role  Role   `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"-"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"-"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns an independent copy, or nil for a nil user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName returns the first non-blank candidate, or FallbackName.
func DisplayName(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return FallbackName
}
