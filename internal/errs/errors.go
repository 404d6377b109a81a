// Package errs provides the unified error type used across blobkit.
//
// Every provider (S3, MinIO) wraps its native SDK errors into *errs.Error
// before returning them. The facade and the CLI inspect failures through the
// Is* predicates and never import SDK error types.
//
// Usage:
//
//	// In a provider, wrap native errors:
//	return errs.Wrap(errs.ErrKindNotFound, "failed to get object", sdkErr)
//
//	// In a caller, branch on the kind:
//	if errs.IsNotFound(err) {
//	    fmt.Println("no such object")
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing provider-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindConfiguration            // missing credentials, unusable provider settings
	ErrKindCredentials              // the service rejected the credentials
	ErrKindNotFound                 // no such key or bucket
	ErrKindPermissionDenied         // authenticated but not authorised
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindService                  // any other SDK or transport failure
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConfiguration:
		return "configuration"
	case ErrKindCredentials:
		return "credentials"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindService:
		return "service"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by blobkit packages.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original SDK-level error, kept for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConfiguration reports whether err comes from unusable local settings,
// such as missing credentials at client construction.
func IsConfiguration(err error) bool {
	return KindOf(err) == ErrKindConfiguration
}

// IsCredentials reports whether the service rejected the credentials.
func IsCredentials(err error) bool {
	return KindOf(err) == ErrKindCredentials
}

// IsNotFound reports whether err represents a missing key or bucket.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsService reports whether err is a generic service or transport failure.
func IsService(err error) bool {
	return KindOf(err) == ErrKindService
}

// KindOf extracts the ErrKind from any error in the chain.
// Errors that never passed through this package report ErrKindUnknown.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
