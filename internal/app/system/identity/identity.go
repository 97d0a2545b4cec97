// Package identity is the email/password identity provider. It owns
// credentials and per-client sign-in state, and announces every sign-in
// state change to its subscribers.
package identity

import (
	"context"
	"errors"
)

// Code classifies provider failures so callers can pick a message.
type Code string

const (
	CodeInvalidEmail  Code = "auth/invalid-email"
	CodeWeakPassword  Code = "auth/weak-password"
	CodeEmailInUse    Code = "auth/email-already-in-use"
	CodeWrongPassword Code = "auth/wrong-password"
	CodeUserNotFound  Code = "auth/user-not-found"
	CodeInternal      Code = "auth/internal-error"
)

// Error is the error type returned by Provider methods.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the provider code from err, or "" if err is not an *Error.
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func fail(code Code, err error) error {
	return &Error{Code: code, Err: err}
}

// Credential is the provider's view of a signed-in identity.
type Credential struct {
	UID         string
	Email       string
	DisplayName string
}

// Event reports the sign-in state of one client. A nil Credential means the
// client is signed out.
type Event struct {
	ClientID   string
	Credential *Credential
}

// Listener receives events synchronously, in the order they occur.
type Listener func(ctx context.Context, ev Event)

// Provider is the identity backend used by the account service.
type Provider interface {
	Register(ctx context.Context, clientID, email, password, displayName string) (Credential, error)
	SignIn(ctx context.Context, clientID, email, password string) (Credential, error)
	SignOut(ctx context.Context, clientID string) error
	Refresh(ctx context.Context, clientID string) error
	Subscribe(fn Listener) (unsubscribe func())
}
