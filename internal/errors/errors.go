// Package errors provides custom error types for the reclamos service.
//
// Each type carries enough context for the HTTP and bot boundaries to decide
// how to answer (4xx, 5xx, or a silent downgrade) and for logs to say what
// went wrong. Classification helpers use errors.As so wrapped errors are
// recognised too.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ValidationError indicates that a submitted complaint is incomplete or malformed.
//
// Either Fields is set, or Field and Allowed are:
//   - Fields lists every missing or blank required field, in declared order
//   - Field names the enumerated field that was violated, Allowed its accepted values
//
// Recovery strategy: none, the caller must fix the request (4xx)
type ValidationError struct {
	Fields  []string
	Field   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("Invalid %s. Must be one of: %s", strings.ToLower(e.Field), strings.Join(e.Allowed, ", "))
}

// NewMissingFieldsError creates a validation error listing blank required fields
func NewMissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// NewInvalidValueError creates a validation error for an enum violation
func NewInvalidValueError(field string, allowed []string) *ValidationError {
	return &ValidationError{Field: field, Allowed: allowed}
}

// StoreKind classifies a failure of the backing medium.
type StoreKind string

const (
	// WriteFailed means the collection could not be persisted.
	WriteFailed StoreKind = "write failed"
	// ReadFailed means the collection exists but could not be read.
	ReadFailed StoreKind = "read failed"
)

// StoreError indicates that the backing medium is unavailable or unwritable.
//
// This error is returned when:
//   - The data directory or file cannot be created or written (permission, disk full)
//   - The temp file cannot be renamed over the collection
//   - Redis rejects or drops the connection
//
// Recovery strategy: none at this layer, surfaced as 5xx and logged
type StoreError struct {
	Op   string
	Kind StoreKind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("store %s: %s", e.Kind, e.Op)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a StoreError of kind WriteFailed
func NewWriteError(op string, err error) *StoreError {
	return &StoreError{Op: op, Kind: WriteFailed, Err: err}
}

// NewReadError creates a StoreError of kind ReadFailed
func NewReadError(op string, err error) *StoreError {
	return &StoreError{Op: op, Kind: ReadFailed, Err: err}
}

// CorruptDataError indicates the persisted collection could not be parsed.
//
// It never leaves the store: the collection is treated as empty and the
// error is only logged and counted.
type CorruptDataError struct {
	Source string
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt collection in %s: %v", e.Source, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// NewCorruptDataError creates a new corrupt data error
func NewCorruptDataError(source string, err error) *CorruptDataError {
	return &CorruptDataError{Source: source, Err: err}
}

// DispatchError indicates that a message could not be delivered through the
// messaging channel.
type DispatchError struct {
	Destination string
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to %s failed: %v", e.Destination, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// NewDispatchError creates a new dispatch error
func NewDispatchError(destination string, err error) *DispatchError {
	return &DispatchError{Destination: destination, Err: err}
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsStore checks if the error is a store error
func IsStore(err error) bool {
	var target *StoreError
	return stderrors.As(err, &target)
}

// IsCorruptData checks if the error is a corrupt data error
func IsCorruptData(err error) bool {
	var target *CorruptDataError
	return stderrors.As(err, &target)
}

// IsDispatch checks if the error is a dispatch error
func IsDispatch(err error) bool {
	var target *DispatchError
	return stderrors.As(err, &target)
}
