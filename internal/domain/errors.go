package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDuplicate           = errors.New("duplicate")
	ErrUpstreamUnavailable = errors.New("classification service temporarily unavailable")
	ErrValidationRejected  = errors.New("content rejected as irrelevant")
	ErrPersistence         = errors.New("commit failed")
	ErrInvalidInput        = errors.New("invalid input")
)

// ErrAlreadyRegistered is returned when a user registers for a workshop twice.
var ErrAlreadyRegistered = fmt.Errorf("already registered: %w", ErrDuplicate)

// ErrorKind classifies an error into the outcome taxonomy surfaced to users.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnauthenticated
	KindNotFound
	KindPermissionDenied
	KindDuplicate
	KindUpstreamUnavailable
	KindValidationRejected
	KindPersistenceFailure
	KindInvalidInput
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindNotFound:
		return "NotFound"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindDuplicate:
		return "Duplicate"
	case KindUpstreamUnavailable:
		return "UpstreamUnavailable"
	case KindValidationRejected:
		return "ValidationRejected"
	case KindPersistenceFailure:
		return "PersistenceFailure"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrValidationRejected):
		return KindValidationRejected
	case errors.Is(err, ErrPersistence):
		return KindPersistenceFailure
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// Retryable reports whether the user may simply submit again.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindPersistenceFailure || k == KindUpstreamUnavailable
}
