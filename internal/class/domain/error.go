package domain

import "errors"

var (
	ErrClassNotFound      = errors.New("class not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrNameRequired       = errors.New("class name is required")
	ErrInvalidPricingMode = errors.New("invalid pricing mode")
)
