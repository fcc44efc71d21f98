// Package service implements the account lifecycle and authentication logic
// behind the HTTP handlers. This file defines the error taxonomy surfaced to
// callers; handlers translate these into HTTP status codes.
package service

import "errors"

var (
	// ErrDuplicateEmail signals a registration against an email that is
	// already taken (case-insensitive), including lost races.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound signals that no account matches the given email or id.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidCredentials signals a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRoleMismatch signals a login against a role the account does not hold.
	ErrRoleMismatch = errors.New("incorrect role selected")

	// ErrApprovalPending signals a login on an account that has not been
	// approved by an admin yet (or has been rejected).
	ErrApprovalPending = errors.New("admin approval pending")

	// ErrForbidden signals an operation reserved for admins.
	ErrForbidden = errors.New("admin only")

	// ErrUnauthorized signals a missing, invalid or expired token, or a
	// token whose subject no longer maps to an account.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports malformed caller input (bad role, bad email,
// short password). Handlers map it to HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }
