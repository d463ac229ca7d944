// Package apierr classifies failed budgeting-API calls into exactly one
// kind. The kind drives the executor's retry decision: transient and
// server failures are retryable, rate limits are retried on the
// server's schedule, everything else surfaces immediately.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the failure classification.
type Kind string

const (
	Auth       Kind = "auth"
	Validation Kind = "validation"
	NotFound   Kind = "not_found"
	RateLimit  Kind = "rate_limit"
	Transient  Kind = "transient_network"
	Server     Kind = "server"
)

// Retryable reports whether the executor may retry a failure of this
// kind. Rate limits are handled separately (they follow the server's
// retry-after hint) but are retryable as well.
func (k Kind) Retryable() bool {
	switch k {
	case Transient, Server, RateLimit:
		return true
	}
	return false
}

// Error is a classified API failure. It always carries a kind and a
// human-readable detail; rate-limit errors also carry the last wait
// hint observed from the server.
type Error struct {
	Kind       Kind
	Status     int           // HTTP status, 0 for transport-level failures
	Detail     string
	RetryAfter time.Duration // last observed hint, rate-limit only
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// errorBody is the error envelope the remote API returns.
type errorBody struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

// Classify maps an HTTP status and response body to a classified error.
// Unknown status codes default to Server when >= 500, Validation
// otherwise.
func Classify(status int, body []byte) *Error {
	detail := detailFromBody(body)
	if detail == "" {
		detail = http.StatusText(status)
	}

	var kind Kind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = Auth
	case status == http.StatusNotFound:
		kind = NotFound
	case status == http.StatusTooManyRequests:
		kind = RateLimit
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		kind = Validation
	case status >= 500:
		kind = Server
	default:
		kind = Validation
	}

	return &Error{Kind: kind, Status: status, Detail: detail}
}

// FromTransport wraps a transport-level failure (dial, TLS, timeout) as
// a transient error. Context cancellation is passed through untouched
// so callers can distinguish their own cancellation from network loss.
func FromTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Kind: Transient, Detail: err.Error()}
}

// KindOf extracts the kind from any error in the chain, or "" when the
// error is not a classified API failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func detailFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Error.Detail != "" {
		return eb.Error.Detail
	}
	return eb.Error.Name
}
