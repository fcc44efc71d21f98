// Package repository defines error types that are reused across the data
// access layer. These sentinel values let higher layers such as services
// distinguish failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// index, including races between concurrent registrations.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when no account matches the given email or id.
var ErrNotFound = errors.New("account not found")
