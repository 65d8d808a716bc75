package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned when no admin matches the given pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNoSession is returned when a request carries no session token.
var ErrNoSession = errors.New("no session")

// AdminListError is returned when admins.json cannot be read or is malformed.
type AdminListError struct {
	Location string
	Message  string
	Cause    error
}

func (e *AdminListError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("admin list %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("admin list %s: %s", e.Location, e.Message)
}

func (e *AdminListError) Unwrap() error {
	return e.Cause
}

// SessionError is returned when a session token is invalid or revoked.
type SessionError struct {
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session: %s: %v", e.Message, e.Cause)
	}
	return "session: " + e.Message
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}
