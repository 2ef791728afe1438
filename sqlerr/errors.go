// Package sqlerr defines the error kinds reported while compiling and binding
// queries.
package sqlerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindConversion means a value cannot be represented for the target
	// dialect or driver.
	KindConversion Kind = iota + 1
	// KindUnsupported means the requested feature has no rendering on the
	// active dialect.
	KindUnsupported
	// KindFormat means writing the query text failed.
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindConversion:
		return "conversion error"
	case KindUnsupported:
		return "unsupported operation"
	case KindFormat:
		return "format error"
	default:
		return "unknown error"
	}
}

var (
	ErrConversion  = &Error{Kind: KindConversion}
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrFormat      = &Error{Kind: KindFormat}
)

type Error struct {
	Kind    Kind
	Dialect string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Dialect != "" {
		msg += " (" + e.Dialect + ")"
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrUnsupported)
// classifies without caring about the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func Conversion(format string, args ...any) *Error {
	return &Error{Kind: KindConversion, Msg: fmt.Sprintf(format, args...)}
}

func Unsupported(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Msg: fmt.Sprintf(format, args...)}
}

func Format(err error) *Error {
	return &Error{Kind: KindFormat, Err: err}
}

// WithDialect returns a copy of e tagged with the dialect name.
func (e *Error) WithDialect(name string) *Error {
	c := *e
	c.Dialect = name
	return &c
}

// KindOf reports the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
