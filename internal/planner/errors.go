package planner

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is, the concrete *Error carries the details.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrGenerationFailed       = errors.New("plan generation failed")
	ErrSchemaViolation        = errors.New("generated plan violates schema")
	ErrExerciseCreationFailed = errors.New("exercise creation failed")
	ErrUnresolvedExercises    = errors.New("unresolved exercises")
	ErrCatalogUnavailable     = errors.New("exercise catalog unavailable")
)

// Error is the failure result of a plan generation.
// Created lists exercises already added to the catalog before the failure; they are not rolled back.
type Error struct {
	Kind    error
	Field   string
	Names   []string
	Created []string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" [field: %s]", e.Field))
	}
	if len(e.Names) > 0 {
		sb.WriteString(fmt.Sprintf(" [exercises: %s]", strings.Join(e.Names, ", ")))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, cause error) *Error {
	return &Error{
		Kind: kind,
		Err:  cause,
	}
}

func schemaViolation(field, format string, args ...any) *Error {
	return &Error{
		Kind:  ErrSchemaViolation,
		Field: field,
		Err:   fmt.Errorf(format, args...),
	}
}
