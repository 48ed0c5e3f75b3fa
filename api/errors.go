package api

import (
	"errors"
	"fmt"
)

// Kind classifies why a request failed.
type Kind int

const (
	// KindNetwork means the request never completed: DNS, refused
	// connection, reset, malformed URL.
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
	// KindTimeout means the client-wide timeout or a context deadline expired.
	KindTimeout
	// KindParse means the body was not the JSON shape the operation expects.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// Error is returned by every Client operation that fails for a reason other
// than caller cancellation.
type Error struct {
	Kind   Kind
	Op     string
	Status int    // HTTP status, KindHTTP only
	Body   string // truncated response body, when one was read
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		if e.Body != "" {
			return fmt.Sprintf("%s: API error %d: %s", e.Op, e.Status, e.Body)
		}
		return fmt.Sprintf("%s: API error %d", e.Op, e.Status)
	case KindTimeout:
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	case KindParse:
		return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsNetwork reports whether err is a connection-level failure.
func IsNetwork(err error) bool { return kindOf(err) == KindNetwork }

// IsHTTP reports whether err is a non-2xx response.
func IsHTTP(err error) bool { return kindOf(err) == KindHTTP }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return kindOf(err) == KindTimeout }

// IsParse reports whether err is an unexpected response shape.
func IsParse(err error) bool { return kindOf(err) == KindParse }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
