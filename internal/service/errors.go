package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileInactive    = errors.New("profile is inactive")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailExists        = errors.New("email already registered")
	ErrSKUExists          = errors.New("SKU already exists")
	ErrStockConflict      = errors.New("stock was changed by another request, please retry")
)

// ValidationError reports missing or invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// OutOfRangeError is returned when a change would take stock below zero.
// Nothing is written when it occurs.
type OutOfRangeError struct {
	ProductID    uuid.UUID
	CurrentStock int
	Change       int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("insufficient stock: current %d, change %d would leave %d",
		e.CurrentStock, e.Change, e.CurrentStock+e.Change)
}

// BackendError wraps a failed storage call.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// backend classifies a storage error: missing rows become ErrNotFound, errors
// that are already part of the taxonomy pass through, the rest are wrapped.
func backend(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var (
		ve *ValidationError
		oe *OutOfRangeError
		be *BackendError
	)
	if errors.As(err, &ve) || errors.As(err, &oe) || errors.As(err, &be) {
		return err
	}
	for _, sentinel := range []error{ErrForbidden, ErrNotFound, ErrInvalidTransition, ErrStockConflict} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &BackendError{Op: op, Err: err}
}
