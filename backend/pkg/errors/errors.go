package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing (or soft-deleted) user, post or notification
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidArgument represents rejected input such as negative pagination
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeForbidden represents an action on content owned by someone else
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeGraph represents graph store errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeCache represents trending cache errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Domain Errors

// ErrNotFound is returned when an entity does not exist or is hidden by soft delete.
// Deleted and absent content produce the same error.
type ErrNotFound struct {
	*BaseError
	Entity string
	ID     string
}

func NewNotFound(entity, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", entity, id), nil),
		Entity:    entity,
		ID:        id,
	}
}

// ErrInvalidArgument is returned when input is rejected before touching the store
type ErrInvalidArgument struct {
	*BaseError
	Field  string
	Reason string
}

func NewInvalidArgument(field, reason string) *ErrInvalidArgument {
	return &ErrInvalidArgument{
		BaseError: NewBaseError(ErrorTypeInvalidArgument, reason, nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrNegativePagination is the shared message for negative skip/limit values
const ErrNegativePagination = "skip or limit cannot be negative"

// NewNegativePagination creates the pagination error returned by every listing
func NewNegativePagination() *ErrInvalidArgument {
	return NewInvalidArgument("skip/limit", ErrNegativePagination)
}

// ErrForbidden is returned when the actor does not own the target
type ErrForbidden struct {
	*BaseError
	Action string
}

func NewForbidden(action, reason string) *ErrForbidden {
	return &ErrForbidden{
		BaseError: NewBaseError(ErrorTypeForbidden, fmt.Sprintf("%s: %s", action, reason), nil),
		Action:    action,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// Cache Errors

// NewCacheFailed wraps a trending cache failure
func NewCacheFailed(operation string, err error) *BaseError {
	return NewBaseError(ErrorTypeCache, fmt.Sprintf("cache %s failed", operation), err)
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// typed is satisfied by every error in this package through the embedded *BaseError
type typed interface {
	error
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// IsErrorType checks if an error, or anything it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.errorType() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool { return IsErrorType(err, ErrorTypeNotFound) }

// IsInvalidArgument reports whether err is an InvalidArgument error
func IsInvalidArgument(err error) bool { return IsErrorType(err, ErrorTypeInvalidArgument) }

// IsForbidden reports whether err is a Forbidden error
func IsForbidden(err error) bool { return IsErrorType(err, ErrorTypeForbidden) }

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Only store-level failures are worth another attempt
	return IsErrorType(err, ErrorTypeGraph) || IsErrorType(err, ErrorTypeCache)
}
