package core

import "errors"

var (
	// ErrValidation marks input that fails a domain rule.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRange marks a date range whose start falls after its end.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrNotFound marks a lookup of a missing or soft-deleted entity.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds marks a withdrawal that would drive a goal
	// balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflict marks a write that collides with an existing entity,
	// such as a second budget for the same month.
	ErrConflict = errors.New("already exists")
)
