// Package liberr defines the error kinds reported by the lending core.
package liberr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. Drivers translate kinds into user-facing output.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindItemNotAvailable Kind = "ITEM_NOT_AVAILABLE"
	KindReturnMismatch   Kind = "RETURN_MISMATCH"
	KindAlreadyArchived  Kind = "ALREADY_ARCHIVED"
	KindNotAMagazine     Kind = "NOT_A_MAGAZINE"
	KindLimitExceeded    Kind = "LIMIT_EXCEEDED"

	// KindArithmeticLimitation is reserved for money overflow. Nothing raises it today.
	KindArithmeticLimitation Kind = "ARITHMETIC_LIMITATION"
)

// Error is a domain failure carrying its kind and a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrNotFound) matches any not-found failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput, Msg: "invalid input"}
	ErrItemNotAvailable = &Error{Kind: KindItemNotAvailable, Msg: "item not available for borrowing"}
	ErrReturnMismatch   = &Error{Kind: KindReturnMismatch, Msg: "return mismatch"}
	ErrAlreadyArchived  = &Error{Kind: KindAlreadyArchived, Msg: "issue already archived"}
	ErrNotAMagazine     = &Error{Kind: KindNotAMagazine, Msg: "item is not an EMagazine"}
	ErrLimitExceeded    = &Error{Kind: KindLimitExceeded, Msg: "borrow limit exceeded"}
)

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error     { return New(KindNotFound, format, args...) }
func InvalidInput(format string, args ...any) error { return New(KindInvalidInput, format, args...) }

// KindOf extracts the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
