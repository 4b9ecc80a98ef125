package misis

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the client can return.
// Callers never observe anything outside of it: errors raised below a
// layer boundary either already carry a Kind or get wrapped into the
// most specific applicable one at that boundary.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindAuthentication
	KindParse
	KindSessionExpired
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthentication:
		return "authentication"
	case KindParse:
		return "parse"
	case KindSessionExpired:
		return "session expired"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	// last HTTP status observed, 0 when not applicable
	Status int
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func newErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// classify wraps err into the given kind unless it already carries a
// kind, in which case it passes through unchanged.
func classify(err error, kind Kind, message string) error {
	var kinded *Error
	if errors.As(err, &kinded) {
		return err
	}
	return &Error{Kind: kind, Message: message, cause: err}
}

// KindOf extracts the failure category of err, or 0 for errors that
// did not originate from this package.
func KindOf(err error) Kind {
	var kinded *Error
	if errors.As(err, &kinded) {
		return kinded.Kind
	}
	return 0
}
