package repository

import "errors"

// Common repository errors
var (
	ErrNotFound = errors.New("record not found")
	// ErrCounterMissing is fatal: the per-type counter row was never seeded.
	// Callers must not paper over it with a zero default.
	ErrCounterMissing = errors.New("counter row does not exist")
	// ErrAlreadyReviewed signals a transition attempt on a terminal record
	ErrAlreadyReviewed = errors.New("record already reviewed")
	// ErrAlreadyExists signals a uniqueness violation in the registries
	ErrAlreadyExists = errors.New("already exists")
)
