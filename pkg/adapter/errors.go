package adapter

import (
	"errors"
	"fmt"

	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// Standard adapter errors. Every error returned to a caller matches exactly
// one of these sentinels via errors.Is; raw driver errors never escape an
// adapter.
var (
	// ErrInvalidArgument is returned for malformed request parameters (caller bug).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a connection id or table/collection is unknown.
	ErrNotFound = errors.New("not found")

	// ErrConnectionFailed is returned when a connection cannot be established or has been lost.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQuerySyntax is returned when the backend rejected the query text.
	ErrQuerySyntax = errors.New("query syntax error")

	// ErrDriver is returned for a backend-reported fault during an otherwise well-formed operation.
	ErrDriver = errors.New("driver error")

	// ErrTimeout is returned when an operation deadline expired before completion.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration is returned when a connection spec is malformed.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// DatabaseError wraps database-specific errors with additional context.
// This provides a consistent error structure across all database types.
type DatabaseError struct {
	DatabaseType dbcapabilities.DatabaseID
	Operation    string
	Kind         error // one of the sentinel errors above
	Cause        error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v: %v", e.DatabaseType, e.Operation, e.Kind, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %v", e.DatabaseType, e.Operation, e.Kind)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind as well as the wrapped cause.
func (e *DatabaseError) Is(target error) bool {
	if errors.Is(e.Kind, target) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// NewDatabaseError creates a new DatabaseError of the given kind.
func NewDatabaseError(dbType dbcapabilities.DatabaseID, operation string, kind, cause error) *DatabaseError {
	return &DatabaseError{
		DatabaseType: dbType,
		Operation:    operation,
		Kind:         kind,
		Cause:        cause,
	}
}

// ConnectionError is returned when a connection cannot be established or used.
type ConnectionError struct {
	DatabaseType dbcapabilities.DatabaseID
	Host         string
	Port         int
	Cause        error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s at %s:%d: %v", e.DatabaseType, e.Host, e.Port, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is matches ErrConnectionFailed and the wrapped cause.
func (e *ConnectionError) Is(target error) bool {
	if errors.Is(target, ErrConnectionFailed) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(dbType dbcapabilities.DatabaseID, host string, port int, cause error) *ConnectionError {
	return &ConnectionError{
		DatabaseType: dbType,
		Host:         host,
		Port:         port,
		Cause:        cause,
	}
}

// NotFoundError is returned when a requested resource does not exist.
type NotFoundError struct {
	DatabaseType dbcapabilities.DatabaseID
	ResourceType string // "table", "collection", "connection"
	ResourceName string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in %s: %s", e.ResourceType, e.DatabaseType, e.ResourceName)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return errors.Is(target, ErrNotFound)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(dbType dbcapabilities.DatabaseID, resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		DatabaseType: dbType,
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// ConfigurationError is returned when a connection spec is malformed.
type ConfigurationError struct {
	DatabaseType dbcapabilities.DatabaseID
	Field        string
	Reason       string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for %s: field '%s': %s", e.DatabaseType, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.DatabaseType, e.Reason)
}

// Is matches ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidConfiguration)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(dbType dbcapabilities.DatabaseID, field, reason string) *ConfigurationError {
	return &ConfigurationError{
		DatabaseType: dbType,
		Field:        field,
		Reason:       reason,
	}
}

// InvalidArgumentError is returned for malformed request parameters.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument '%s': %s", e.Argument, e.Reason)
}

// Is matches ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return errors.Is(target, ErrInvalidArgument)
}

// NewInvalidArgumentError creates a new InvalidArgumentError.
func NewInvalidArgumentError(argument, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Argument: argument, Reason: reason}
}

// WrapError wraps an error with database context as a DriverError-kind
// DatabaseError. If the error is already typed, it is returned as-is.
func WrapError(dbType dbcapabilities.DatabaseID, operation string, err error) error {
	if err == nil {
		return nil
	}

	// Don't double-wrap
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return err
	}
	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return err
	}

	return NewDatabaseError(dbType, operation, ErrDriver, err)
}

// IsConnectionError checks if an error indicates a failed or lost connection.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsNotFound checks if an error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsQuerySyntax checks if an error indicates the backend rejected the query text.
func IsQuerySyntax(err error) bool {
	return errors.Is(err, ErrQuerySyntax)
}

// IsTimeout checks if an error indicates an expired operation deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
