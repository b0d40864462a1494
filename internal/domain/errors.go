package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so transport layers can map them to status codes
// without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAmbiguous    = errors.New("ambiguous match")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
)
