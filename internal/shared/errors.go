package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrPeriodClosed indicates a write attempt against a closed fiscal period.
	ErrPeriodClosed = errors.New("fiscal period is closed")
	// ErrInvalidPeriodTransition indicates a status change not allowed by policy.
	ErrInvalidPeriodTransition = errors.New("period transition invalid")
)
