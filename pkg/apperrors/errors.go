package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyQuestion   = errors.New("question is required")
	ErrUnsafeQuestion  = errors.New("question contains a SQL injection pattern")
	ErrInvalidStatus   = errors.New("invalid status filter")
	ErrUnauthenticated = errors.New("not authenticated")
)
