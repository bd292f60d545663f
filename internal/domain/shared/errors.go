package shared

import (
	"github.com/samber/oops"
)

// Error codes for domain errors
const (
	// Common errors (1000-1999)
	ErrCodeInvalidInput      = 1001
	ErrCodeNotFound          = 1002
	ErrCodeAlreadyExists     = 1003
	ErrCodeInvalidIdentifier = 1004
	ErrCodeStoreUnavailable  = 1005

	// Auth errors (2000-2999)
	ErrCodeInvalidCredentials    = 2001
	ErrCodeTokenExpired          = 2002
	ErrCodeTokenInvalidSignature = 2003
	ErrCodeUnauthenticated       = 2004
)

// NewDomainError creates a new domain error using oops
func NewDomainError(code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(message)
}

// NewDomainErrorf creates a new domain error with formatted message
func NewDomainErrorf(code int, format string, args ...interface{}) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Errorf(format, args...)
}

// WrapDomainError wraps an existing error with domain context
func WrapDomainError(err error, code int, message string) error {
	return oops.
		Code(codeToString(code)).
		In("domain").
		With("error_code", code).
		Wrapf(err, message)
}

// codeToString converts int error code to string
func codeToString(code int) string {
	switch code {
	case ErrCodeInvalidInput:
		return "INVALID_INPUT"
	case ErrCodeNotFound:
		return "NOT_FOUND"
	case ErrCodeAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrCodeInvalidIdentifier:
		return "INVALID_IDENTIFIER"
	case ErrCodeStoreUnavailable:
		return "STORE_UNAVAILABLE"
	case ErrCodeInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case ErrCodeTokenExpired:
		return "TOKEN_EXPIRED"
	case ErrCodeTokenInvalidSignature:
		return "TOKEN_INVALID_SIGNATURE"
	case ErrCodeUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// CodeOf extracts the string error code from a domain error.
// Returns "UNKNOWN" for errors produced outside this package.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != "" {
			return code
		}
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given domain error code
func HasCode(err error, code int) bool {
	return CodeOf(err) == codeToString(code)
}

func ErrInvalidInput(msg string) error {
	return NewDomainError(ErrCodeInvalidInput, msg)
}

func ErrNotFound(resource string) error {
	return NewDomainErrorf(ErrCodeNotFound, "%s not found", resource)
}

func ErrAlreadyExists(resource string) error {
	return NewDomainErrorf(ErrCodeAlreadyExists, "%s already exists", resource)
}

func ErrInvalidIdentifier(raw string) error {
	return NewDomainErrorf(ErrCodeInvalidIdentifier, "invalid identifier: %q", raw)
}

func ErrStoreUnavailable(err error) error {
	return WrapDomainError(err, ErrCodeStoreUnavailable, "document store unavailable")
}

func ErrInvalidCredentials() error {
	return NewDomainError(ErrCodeInvalidCredentials, "invalid email or password")
}

func ErrUnauthenticated() error {
	return NewDomainError(ErrCodeUnauthenticated, "authentication required")
}
