package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing name, day number outside the trip's span).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPermission is returned when the acting user lacks the rights for an
// operation (e.g. a viewer trying to reorder stops).
// Handlers should map this to HTTP 403.
var ErrPermission = errors.New("permission denied")
