package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindRule
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindRule:
		return "rule"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a caller-facing error. Its message is safe to return to clients.
type Error struct {
	Kind Kind
	Msg  string

	cause error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Invalid(msg string) error   { return New(KindInvalid, msg) }
func NotFound(msg string) error  { return New(KindNotFound, msg) }
func Rule(msg string) error      { return New(KindRule, msg) }
func Forbidden(msg string) error { return New(KindForbidden, msg) }
func Conflict(msg string) error  { return New(KindConflict, msg) }

// With appends detail to the message of sentinel. The result keeps the kind
// and still matches sentinel with errors.Is.
func With(sentinel error, detail string) error {
	var e *Error
	if !errors.As(sentinel, &e) {
		return fmt.Errorf("%w: %s", sentinel, detail)
	}
	return &Error{Kind: e.Kind, Msg: e.Msg + ": " + detail, cause: sentinel}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the public message of err, or "" for internal errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
