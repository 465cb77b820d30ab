package domain

import "errors"

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvoiceItemNotFound = errors.New("invoice item not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountExceedsDue    = errors.New("amount exceeds remaining due")
	ErrInvalidMonth        = errors.New("invalid month, expected YYYY-MM")
)
