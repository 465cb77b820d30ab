package domain

import "errors"

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrEmailRequired   = errors.New("email is required")
)
