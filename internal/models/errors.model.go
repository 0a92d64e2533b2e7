package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every invalid field of a creation request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fieldErr.Field, fieldErr.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, reason string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) Has(field string) bool {
	for _, fieldErr := range e.Errors {
		if fieldErr.Field == field {
			return true
		}
	}
	return false
}

// UniquenessViolation is raised by the store when a unique column already
// holds the submitted value.
type UniquenessViolation struct {
	Field string
}

func (e *UniquenessViolation) Error() string {
	if e.Field == "" {
		return "record already exists"
	}
	return fmt.Sprintf("%s already registered", e.Field)
}

type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ReferenceNotFound means a foreign-key field points at a user that does not
// exist.
type ReferenceNotFound struct {
	Field string
	ID    int
}

func (e *ReferenceNotFound) Error() string {
	if e.Field == "" {
		return "referenced user does not exist"
	}
	return fmt.Sprintf("%s %d does not reference an existing user", e.Field, e.ID)
}
