package core

import (
	"errors"
	"fmt"
)

// ValidationError is returned for missing or invalid configuration. It is
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of one request.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Field + ": " + err.Message
	}
	return msg
}

// As lets errors.As find a *ValidationError inside the collection.
func (e ValidationErrors) As(target any) bool {
	if len(e) == 0 {
		return false
	}
	if t, ok := target.(**ValidationError); ok {
		*t = e[0]
		return true
	}
	return false
}

// ExecutionError means the execution engine reported a failed run.
type ExecutionError struct {
	JobID   string
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute backup for job %s: %s", e.JobID, e.Message)
}

// NotFoundError means an expected record was absent.
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StoreError wraps a failed store read or write with the operation name.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ConflictError means another execution of the job holds the execution guard.
type ConflictError struct {
	JobID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("backup job %s already has an execution in progress", e.JobID)
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
