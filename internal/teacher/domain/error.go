package domain

import "errors"

var (
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrEmailRequired   = errors.New("email is required")
)
