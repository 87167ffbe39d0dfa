package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoMealPlan   = errors.New("no meal plans found")
)

// ValidationError is a rejected request; Code is the machine-readable
// error field of the response and Extra is merged into the body.
type ValidationError struct {
	Code    string
	Message string
	Extra   map[string]any
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func invalid(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

func invalidAction(message string) *ValidationError {
	return invalid("invalid_action", message)
}

// StorageError wraps database failures so controllers can answer 500.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
