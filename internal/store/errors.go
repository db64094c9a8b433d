package store

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrOverflow   = errors.New("result overflows uint64")
)

type ValidationError struct {
	Kind   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	Kind string
	ID   uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ReferenceError reports an appointment pointing at a client or service that
// no longer exists.
type ReferenceError struct {
	AppointmentID uint64
	Kind          string
	ID            uint64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("appointment %d references missing %s %d", e.AppointmentID, e.Kind, e.ID)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrNotFound }
