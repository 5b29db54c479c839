// Package errors provides structured error handling for the retend core.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindLifecycle indicates a failure inside a setup or cleanup callback.
	KindLifecycle
	// KindConfig indicates a caller misconfiguration (e.g. a bad key function).
	KindConfig
	// KindHost indicates a host adapter contract violation.
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindConfig:
		return "config"
	case KindHost:
		return "host"
	default:
		return "unknown"
	}
}

// Error represents a structured error in the retend core.
type Error struct {
	// Op is the operation that failed (e.g., "scope.Activate").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// LifecycleError represents a recovered panic from a setup or cleanup
// callback. These are reported, never propagated: a misbehaving lifecycle
// hook must not interrupt sibling hooks or the surrounding reconciliation.
type LifecycleError struct {
	// Op is the operation that panicked (e.g., "scope.Dispose").
	Op string
	// Phase is "setup" or "cleanup".
	Phase string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *LifecycleError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s %s: %v", e.Op, e.Phase, e.Value)
	}
	return fmt.Sprintf("panic in %s: %v", e.Phase, e.Value)
}

// Handler receives errors reported by the core.
type Handler interface {
	// HandleError is called when a structured error occurs.
	HandleError(err *Error)
	// HandleLifecycleError is called when a setup or cleanup panic is recovered.
	HandleLifecycleError(err *LifecycleError)
}
