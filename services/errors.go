package services

import "errors"

// Service errors handlers translate into HTTP responses. An ownership
// violation is reported as ErrNotFound so it is indistinguishable from the
// entity being absent.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAuthRequired = errors.New("authentication required")
)
