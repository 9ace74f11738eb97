package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError reports which input field failed validation. It matches
// ErrInvalidInput under errors.Is.
type FieldError struct {
	Field string
	Msg   string
}

func NewFieldError(field, msg string) *FieldError {
	return &FieldError{Field: field, Msg: msg}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrInvalidInput, e.Msg, e.Field)
}

func (e *FieldError) Unwrap() error { return ErrInvalidInput }
