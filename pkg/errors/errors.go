// Package errors provides custom error types for the schememaster system.
// These errors enable programmatic error checking across the reconciliation
// pipeline: row-level failures that skip a row, data-quality conditions that
// route a record to manual review, and invariant violations that must reject
// a write outright.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the schememaster system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedRow indicates a feed row missing or mistyping a required field
	ErrMalformedRow = errors.New("malformed row")

	// ErrAmbiguousISIN indicates an ISIN matching more than one catalog scheme
	ErrAmbiguousISIN = errors.New("ambiguous isin")

	// ErrInvariant indicates an attempted write that would break a mapping invariant
	ErrInvariant = errors.New("invariant violation")

	// ErrMergeSource indicates a verified mapping whose catalog scheme is gone
	ErrMergeSource = errors.New("merge source missing")

	// ErrMasterConflict indicates two verified mappings composing the same master key
	ErrMasterConflict = errors.New("master row conflict")

	// ErrBatchInFlight indicates a batch pass already running for the same source
	ErrBatchInFlight = errors.New("batch already in flight")

	// ErrReadOnly indicates an attempt to modify a read-only store
	ErrReadOnly = errors.New("read only")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// MalformedRowError represents a feed row that cannot be normalized.
// The row is skipped and logged; the batch continues.
type MalformedRowError struct {
	Source string // feed source tag, e.g. "cams"
	File   string
	Line   int
	Column string // name of the offending column
	Reason string
}

// Error implements the error interface
func (e *MalformedRowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed %s row at %s:%d, column %q: %s", e.Source, e.File, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed %s row, column %q: %s", e.Source, e.Column, e.Reason)
}

// Is implements errors.Is support
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// NewMalformedRowError creates a new MalformedRowError
func NewMalformedRowError(source, column, reason string) *MalformedRowError {
	return &MalformedRowError{Source: source, Column: column, Reason: reason}
}

// AmbiguousISINError represents an ISIN claimed by more than one catalog
// scheme. No automatic mapping is made; the record is routed to review.
type AmbiguousISINError struct {
	ISIN  string
	Codes []int // catalog scheme codes claiming the ISIN
}

// Error implements the error interface
func (e *AmbiguousISINError) Error() string {
	return fmt.Sprintf("isin %s claimed by %d catalog schemes %v", e.ISIN, len(e.Codes), e.Codes)
}

// Is implements errors.Is support
func (e *AmbiguousISINError) Is(target error) bool {
	return target == ErrAmbiguousISIN
}

// InvariantError represents a write that would break a mapping invariant,
// such as a second verified mapping for the same RTA natural key or an
// illegal verification-state transition. The prior state is retained.
type InvariantError struct {
	Key     string // natural key of the record involved
	Message string
}

// Error implements the error interface
func (e *InvariantError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invariant violation for %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("invariant violation: %s", e.Message)
}

// Is implements errors.Is support
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// MergeSourceError represents a verified mapping whose catalog scheme was
// deleted after verification. The merge for that row is skipped and flagged.
type MergeSourceError struct {
	Key  string // RTA natural key of the mapping
	Code int    // catalog scheme code the mapping points at
}

// Error implements the error interface
func (e *MergeSourceError) Error() string {
	return fmt.Sprintf("mapping %s points at catalog scheme %d which no longer exists", e.Key, e.Code)
}

// Is implements errors.Is support
func (e *MergeSourceError) Is(target error) bool {
	return target == ErrMergeSource
}

// MasterConflictError represents two verified mappings from different RTA
// sources composing the same master key. The first mapping in key order
// publishes the row; the collision is flagged instead of overwritten.
type MasterConflictError struct {
	MasterKey string // code/plan/option of the contested row
	Published string // RTA natural key of the mapping that published it
	Conflict  string // RTA natural key of the mapping that was skipped
}

// Error implements the error interface
func (e *MasterConflictError) Error() string {
	return fmt.Sprintf("master row %s already published from mapping %s; conflicting mapping %s skipped", e.MasterKey, e.Published, e.Conflict)
}

// Is implements errors.Is support
func (e *MasterConflictError) Is(target error) bool {
	return target == ErrMasterConflict
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// ResourceError represents an error during store operations
type ResourceError struct {
	Operation string // "get", "upsert", "delete", "load", "save"
	Resource  string // "catalog scheme", "rta record", "mapping", "master"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformedRow checks if an error is a malformed row error
func IsMalformedRow(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}

// IsAmbiguousISIN checks if an error is an ambiguous ISIN error
func IsAmbiguousISIN(err error) bool {
	return errors.Is(err, ErrAmbiguousISIN)
}

// IsInvariant checks if an error is an invariant violation
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IsMergeSource checks if an error is a merge source missing error
func IsMergeSource(err error) bool {
	return errors.Is(err, ErrMergeSource)
}

// IsMasterConflict checks if an error is a master row conflict
func IsMasterConflict(err error) bool {
	return errors.Is(err, ErrMasterConflict)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
