package domain

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes ledger failures so callers can branch on them
type ErrorKind string

const (
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindAlreadyPaid         ErrorKind = "ALREADY_PAID"
	KindInvalidInput        ErrorKind = "INVALID_INPUT"
)

// Error is a typed ledger error. Two errors are considered equal by
// errors.Is when their kinds match, so the sentinels below can be used
// to test any error of that kind regardless of its message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance, Message: "insufficient balance"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyPaid         = &Error{Kind: KindAlreadyPaid, Message: "invoice already paid"}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

// NewError builds an error of the given kind with a formatted message
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputf is shorthand for NewError(KindInvalidInput, ...)
func InvalidInputf(format string, args ...any) *Error {
	return NewError(KindInvalidInput, format, args...)
}

// NotFoundf is shorthand for NewError(KindNotFound, ...)
func NotFoundf(format string, args ...any) *Error {
	return NewError(KindNotFound, format, args...)
}

// KindOf returns the kind of a ledger error, or "" for anything else
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
