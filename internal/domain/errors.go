// Package domain holds the quote model, the in-memory quote store and the
// errors the rest of the service classifies. Errors here say what went wrong
// in quote terms; adapters decide how that becomes a status code or a
// notification.
package domain

import (
	"errors"
	"fmt"
)

// Sentinels. Every typed error below unwraps to exactly one of them.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrEmptyResult = errors.New("empty result")
	ErrPersistence = errors.New("persistence failed")

	// ErrTransport covers an unreachable remote and a non-2xx answer alike.
	ErrTransport = errors.New("transport failed")
)

// NotFoundError names a missing entity, such as a session's last viewed quote.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports an operation refused because of current state; a
// sync request while a cycle is running is the common case.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError rejects user or import input. Field is the wire name of
// the offending input, empty when the whole document is at fault.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// EmptyResultError means a random pick had no candidates. Category is the
// active filter, empty when the store itself is empty.
type EmptyResultError struct {
	Category string
}

func (e *EmptyResultError) Error() string {
	if e.Category == "" {
		return "no quotes available"
	}
	return "no quotes found for category: " + e.Category
}

func (e *EmptyResultError) Unwrap() error { return ErrEmptyResult }

func NewEmptyResultError(category string) error {
	return &EmptyResultError{Category: category}
}

// PersistenceError is a failed read or write of one storage key. It matches
// both ErrPersistence and its Cause under errors.Is.
type PersistenceError struct {
	Op    string
	Key   string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s %q failed", e.Op, e.Key)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPersistence}
	}
	return []error{ErrPersistence, e.Cause}
}

func NewPersistenceError(op, key string, cause error) error {
	return &PersistenceError{Op: op, Key: key, Cause: cause}
}

// TransportError is a failed exchange with the remote quote server.
// StatusCode is zero when no response arrived.
type TransportError struct {
	Service    string
	Operation  string
	StatusCode int
	Reason     string
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s", e.Service, e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Service, e.Operation, e.StatusCode, e.Reason)
}

func (e *TransportError) Unwrap() error { return ErrTransport }

func NewTransportError(service, operation, reason string) error {
	return &TransportError{Service: service, Operation: operation, Reason: reason}
}

func NewTransportStatusError(service, operation string, status int, reason string) error {
	return &TransportError{Service: service, Operation: operation, StatusCode: status, Reason: reason}
}

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsEmptyResult(err error) bool { return errors.Is(err, ErrEmptyResult) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
func IsTransport(err error) bool   { return errors.Is(err, ErrTransport) }
