package payment

import (
	"errors"
	"fmt"
)

// Kind classifies a payment error so callers can map it to an HTTP status
// and a retry policy without string matching.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindSignature      Kind = "signature"
	KindNotFound       Kind = "not_found"
	KindUpstream       Kind = "upstream"
	KindPersistence    Kind = "persistence"
)

// Error is the error type returned by every payment service. Expected
// conditions (bad input, missing paid session, rejected signature) are
// values of this type rather than panics or sentinel strings.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewAuthenticationError(msg string) error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func NewSignatureError(err error) error {
	return &Error{Kind: KindSignature, Message: "Invalid signature", Err: err}
}

func NewNotFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewUpstreamError(msg string, err error) error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func NewPersistenceError(msg string, err error) error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf extracts the error kind, defaulting to persistence for unclassified
// failures so they surface as retryable 500s.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindPersistence
}
