package domain

import "errors"

// Shared error taxonomy. Store and service code wraps these so callers can
// classify failures with errors.Is instead of inspecting return values.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUpstream      = errors.New("upstream failure")
)
