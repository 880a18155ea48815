// ABOUTME: Error values returned by the API client and their classification
// ABOUTME: ResponseError for HTTP failures, TransportError when no response arrived

package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is one entry of the envelope's errors list. Validators
// answer with either message or msg.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// Text returns the human-readable part of the field error.
func (f FieldError) Text() string {
	if f.Message != "" {
		return f.Message
	}
	return f.Msg
}

// ResponseError is a non-2xx answer from the API.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Errors     []FieldError
	Body       []byte
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Summary joins the field errors with ", ". With no usable field errors it
// falls back to the message, then to fallback.
func (e *ResponseError) Summary(fallback string) string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if t := fe.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// TransportError means the request never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Class is the failure taxonomy used by the reporting policy.
type Class int

const (
	// Unclassified covers failures before a request could be sent or
	// after a response could not be read.
	Unclassified Class = iota
	AuthExpired
	Forbidden
	ServerFault
	ValidationFailed
	NetworkUnreachable
	// Unreported covers other 4xx answers and cancelled requests.
	Unreported
)

func (c Class) String() string {
	switch c {
	case AuthExpired:
		return "auth_expired"
	case Forbidden:
		return "forbidden"
	case ServerFault:
		return "server_fault"
	case ValidationFailed:
		return "validation_failed"
	case NetworkUnreachable:
		return "network_unreachable"
	case Unreported:
		return "unreported"
	default:
		return "unclassified"
	}
}

// Classify maps an error returned by Client to its Class. nil classifies
// as Unreported.
func Classify(err error) Class {
	if err == nil {
		return Unreported
	}

	var re *ResponseError
	if errors.As(err, &re) {
		switch {
		case re.StatusCode == http.StatusUnauthorized:
			return AuthExpired
		case re.StatusCode == http.StatusForbidden:
			return Forbidden
		case re.StatusCode >= 500:
			return ServerFault
		case re.StatusCode == http.StatusBadRequest:
			return ValidationFailed
		default:
			return Unreported
		}
	}

	var te *TransportError
	if errors.As(err, &te) {
		if errors.Is(te.Err, context.Canceled) {
			return Unreported
		}
		return NetworkUnreachable
	}

	return Unclassified
}

// AsResponse returns the *ResponseError inside err, if any.
func AsResponse(err error) (*ResponseError, bool) {
	var re *ResponseError
	ok := errors.As(err, &re)
	return re, ok
}
