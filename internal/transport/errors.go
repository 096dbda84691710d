package transport

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

// Error kinds surfaced by Send.
const (
	KindServiceError Kind = iota
	KindTimeout
	KindUnauthorized
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "service_error"
	}
}

// Sentinel errors for errors.Is matching against *Error.
var (
	ErrTimeout      = errors.New("request timed out")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrServiceError = errors.New("service error")
)

// Error represents a failed request to the interview service.
type Error struct {
	Kind   Kind
	Method string
	Path   string
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Detail is the service's error message, or a generic message.
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error of the same kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrServiceError:
		return e.Kind == KindServiceError
	}
	return false
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var terr *Error
	if errors.As(err, &terr) {
		return terr, true
	}
	return nil, false
}
