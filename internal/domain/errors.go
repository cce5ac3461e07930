package domain

import "errors"

// Engine error taxonomy. Every failure leaving the app layer wraps one of
// these sentinels so the HTTP boundary can map it with errors.Is; anything
// else is treated as internal and never leaks detail to the caller.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("date range conflict")
	ErrForbidden  = errors.New("forbidden")
)
