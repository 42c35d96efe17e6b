package domain

import "errors"

// Domain error taxonomy. Repositories translate driver errors into these;
// the HTTP layer maps them onto the response envelope.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrForeignKey    = errors.New("related entity referenced does not exist")

	// ErrForbidden is kept distinct from ErrNotFound so audit logs can tell
	// "no such row" apart from "not the author". The HTTP layer intentionally
	// unifies the two to avoid leaking resource existence.
	ErrForbidden = errors.New("forbidden")
)
