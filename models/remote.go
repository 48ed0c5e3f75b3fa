package models

import (
	"context"
	"errors"
)

// Status is where a Remote is in its fetch cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// Remote tracks one fetched resource. Begin hands out a token for every
// request; Resolve only accepts the result carrying the latest token, so
// when requests overlap the last one issued wins. A failed request keeps
// the previous data around.
type Remote[T any] struct {
	Data   T
	Err    error
	Status Status

	token   uint64
	hasData bool
}

// Begin marks the resource as loading and returns the request token.
func (r *Remote[T]) Begin() uint64 {
	r.token++
	r.Status = StatusLoading
	return r.token
}

// Resolve stores the outcome of the request identified by token. It reports
// false and changes nothing when token is stale. A cancelled request puts
// the resource back where it was before Begin.
func (r *Remote[T]) Resolve(token uint64, data T, err error) bool {
	if token != r.token || r.Status != StatusLoading {
		return false
	}
	switch {
	case errors.Is(err, context.Canceled):
		r.settle()
	case err != nil:
		r.Err = err
		r.Status = StatusError
	default:
		r.Data = data
		r.Err = nil
		r.hasData = true
		r.Status = StatusSuccess
	}
	return true
}

// Cancel invalidates any request in flight.
func (r *Remote[T]) Cancel() {
	r.token++
	if r.Status == StatusLoading {
		r.settle()
	}
}

func (r *Remote[T]) settle() {
	switch {
	case r.Err != nil:
		r.Status = StatusError
	case r.hasData:
		r.Status = StatusSuccess
	default:
		r.Status = StatusIdle
	}
}

// Loading reports whether a request is in flight.
func (r *Remote[T]) Loading() bool { return r.Status == StatusLoading }

// HasData reports whether any request has ever succeeded.
func (r *Remote[T]) HasData() bool { return r.hasData }

// Failed reports whether the latest completed request failed.
func (r *Remote[T]) Failed() bool { return r.Status == StatusError }
