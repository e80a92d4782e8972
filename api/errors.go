package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindValidation marks missing local input. Never reaches the network.
	KindValidation Kind = iota
	// KindBusiness marks a response with success=false.
	KindBusiness
	// KindTransport marks network failures and malformed responses.
	KindTransport
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ConnectivityMessage is shown for every transport failure.
const ConnectivityMessage = "Failed to connect to server."

// Error is the failure half of every facade result.
type Error struct {
	Kind    Kind
	Message string
	Status  int   // HTTP status when a response was received
	Cause   error // underlying transport error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error with the given user-facing message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func business(status int, message string) *Error {
	return &Error{Kind: KindBusiness, Message: message, Status: status}
}

func transport(status int, cause error) *Error {
	return &Error{Kind: KindTransport, Message: ConnectivityMessage, Status: status, Cause: cause}
}

// KindOf returns the kind of err. Errors that did not come from the facade
// are treated as transport failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// Message returns the user-facing text for err. Validation and business
// messages are returned verbatim; an empty business message falls back to
// fallback. Transport failures always yield ConnectivityMessage. Errors that
// did not come from the facade, such as local disk failures, yield fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return fallback
	}
	switch e.Kind {
	case KindValidation, KindBusiness:
		if e.Message != "" {
			return e.Message
		}
		return fallback
	default:
		return ConnectivityMessage
	}
}
