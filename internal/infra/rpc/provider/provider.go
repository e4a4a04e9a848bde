// Package provider implements the HTTP transport used to reach public endpoints.
//
// This package contains:
//   - HTTPTransport: JSON-RPC calls, REST reads and bodiless reachability checks
//   - TransportError: failures tagged as network, cross-origin or timeout
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorClass tags a transport failure so callers can pick a recovery path.
type ErrorClass int

const (
	ClassNetwork ErrorClass = iota // Connection refused, DNS, TLS, broken body
	ClassCORS                      // Response arrived but the origin may not read it
	ClassTimeout                   // Deadline expired before a response
)

func (c ErrorClass) String() string {
	switch c {
	case ClassCORS:
		return "cors-restricted"
	case ClassTimeout:
		return "timeout"
	default:
		return "network-error"
	}
}

// TransportError is returned for every failure below the HTTP status level.
type TransportError struct {
	Class ErrorClass
	Op    string
	URL   string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Class, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClassOf extracts the class of a transport failure. ok is false for other errors.
func ClassOf(err error) (class ErrorClass, ok bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Class, true
	}
	return 0, false
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d", e.StatusCode)
}

// RPCError is a JSON-RPC error object returned by the endpoint.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

var errOriginRejected = errors.New("origin not allowed by Access-Control-Allow-Origin")

func classify(ctx context.Context, op, url string, err error) *TransportError {
	class := ClassNetwork

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		class = ClassTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		class = ClassTimeout
	}

	return &TransportError{Class: class, Op: op, URL: url, Err: err}
}
