// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInvalidPath = errors.New("invalid path")
	ErrNoActive    = errors.New("no active document")
)
