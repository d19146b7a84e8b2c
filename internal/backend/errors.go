package backend

import (
	"context"
	"errors"
	"fmt"
)

// AuthError indicates that no token is configured or the backend rejected
// the credentials with a 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication required: %s", e.Message)
}

// PermissionError indicates the backend rejected the call with a
// forbidden-class status.
type PermissionError struct {
	Path string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for %s", e.Path)
}

// NotFoundError indicates the referenced resource does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// ValidationError indicates malformed input detected client-side before
// any call was attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ServerError indicates any other failure reported by the backend.
type ServerError struct {
	Status int
	Path   string
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d) on %s: %s", e.Status, e.Path, e.Body)
}

// IsAuthRequired reports whether err (or any error in its chain) is an
// AuthError.
func IsAuthRequired(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsPermissionDenied reports whether err is a PermissionError.
func IsPermissionDenied(err error) bool {
	var permErr *PermissionError
	return errors.As(err, &permErr)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

// IsTimeout reports whether err was caused by an expired deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// ErrorKind buckets an error into the failure taxonomy reported to
// error callbacks.
type ErrorKind string

const (
	KindAuthRequired     ErrorKind = "auth_required"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindNotFound         ErrorKind = "not_found"
	KindTimeout          ErrorKind = "timeout"
	KindValidation       ErrorKind = "validation"
	KindServer           ErrorKind = "server"
	KindGeneric          ErrorKind = "generic"
)

// Classify maps an error onto its ErrorKind. Timeout is checked before the
// typed errors so a deadline hit during any call classifies as a timeout.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case IsTimeout(err):
		return KindTimeout
	case IsAuthRequired(err):
		return KindAuthRequired
	case IsPermissionDenied(err):
		return KindPermissionDenied
	case IsNotFound(err):
		return KindNotFound
	case IsValidation(err):
		return KindValidation
	default:
		var srvErr *ServerError
		if errors.As(err, &srvErr) {
			return KindServer
		}
		return KindGeneric
	}
}
