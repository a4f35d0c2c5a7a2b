package tracking

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid timer state transition")
	ErrRepository        = errors.New("repository failure")
	ErrTaskNotFound      = errors.New("task not found")
	ErrEntryNotFound     = errors.New("time entry not found")
)

// ValidationError describes rejected input. Nothing is changed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RepositoryError wraps a persistence failure. The caller decides whether to retry.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

func (e *RepositoryError) Is(target error) bool { return target == ErrRepository }
