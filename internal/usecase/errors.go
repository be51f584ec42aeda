package usecase

import (
	"errors"
	"fmt"

	"capsule-hotel/pkg/utils"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrGone         = errors.New("gone")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
)

type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return e.Message + ": " + utils.FormatValidationErrors(e.Fields)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: "validation failed", Fields: fields}
}
