package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindUnknown is never produced by the dispatcher; it is the zero value
	KindUnknown Kind = iota
	// KindAuthExpired is an HTTP 401 from the backend
	KindAuthExpired
	// KindServer is an HTTP 500 from the backend
	KindServer
	// KindRequestFailed is any other non-2xx status
	KindRequestFailed
	// KindNetwork is a transport-level failure
	KindNetwork
	// KindTimeout means the attempt deadline fired before a response arrived
	KindTimeout
	// KindCanceled means the caller's context ended the request
	KindCanceled
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindAuthExpired:
		return "auth_expired"
	case KindServer:
		return "server"
	case KindRequestFailed:
		return "request_failed"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Sentinel errors matching each classification. Use them with errors.Is:
//
//	if errors.Is(err, api.ErrAuthExpired) { ... }
var (
	ErrAuthExpired   = errors.New("authentication expired")
	ErrServer        = errors.New("server error")
	ErrRequestFailed = errors.New("request failed")
	ErrNetwork       = errors.New("network error")
	ErrTimeout       = errors.New("request timed out")
	ErrCanceled      = errors.New("request canceled")
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid client configuration")
	// ErrNotLoggedIn is returned when an operation needs a session token and none is held
	ErrNotLoggedIn = errors.New("login required")
	// ErrNoAccessToken is returned when an auth response carries no recognized token field
	ErrNoAccessToken = errors.New("auth response has no access token")
	// ErrNotJSON is returned when decoding a response that is not JSON
	ErrNotJSON = errors.New("response is not JSON")
	// ErrInvalidRating is returned for review ratings outside 1..5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// User-facing messages attached to classified errors.
const (
	MsgAuthExpired     = "Your session has expired. Please log in again."
	MsgServerError     = "A server error occurred. Please try again shortly."
	MsgNetworkError    = "Please check your network connection."
	MsgTimeoutError    = "The server took too long to respond. Please try again shortly."
	MsgCanceled        = "The request was canceled."
	MsgFallbackProfile = "The server connection is unstable. Some information may be out of date."
)

// Error is a classified request failure. Error() returns the human-readable
// message so it can be shown to users as is.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Method     string
	Path       string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying transport error, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's classification
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Retryable reports whether the dispatcher may retry the failure at the transport level
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindTimeout
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthExpired:
		return ErrAuthExpired
	case KindServer:
		return ErrServer
	case KindRequestFailed:
		return ErrRequestFailed
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// KindOf returns the classification of err, or KindUnknown if err is not a classified failure
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsTransportRetryable reports whether err is a timeout or network failure
func IsTransportRetryable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// IsServerError reports whether err is classified as a server error
func IsServerError(err error) bool {
	return errors.Is(err, ErrServer)
}
