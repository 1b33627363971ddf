package models

import (
	"errors"
	"fmt"
)

// ErrInternal masks unexpected infrastructure failures at the API boundary
var ErrInternal = errors.New("internal server error")

// NotFoundError signals a missing entity, naming the identifier that failed
// to resolve
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found.", e.Resource)
	}
	return fmt.Sprintf("%s %v not found.", e.Resource, e.ID)
}

// NewNotFound builds a NotFoundError for the given resource and identifier
func NewNotFound(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError signals malformed client input (bad extension, oversized
// upload, missing fields)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthError signals a missing or invalid bearer token; raised only at the
// request boundary
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuth(message string) error {
	return &AuthError{Message: message}
}

// ConflictError surfaces duplicate-key failures when concurrent requests
// race on the same natural key
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsDomainError reports whether err is a deliberately-raised client-visible
// error, as opposed to an unexpected failure. Domain errors pass through the
// tenant session boundary unchanged.
func IsDomainError(err error) bool {
	var (
		notFound   *NotFoundError
		validation *ValidationError
		auth       *AuthError
		conflict   *ConflictError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &validation) ||
		errors.As(err, &auth) ||
		errors.As(err, &conflict)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
