package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies split failures for callers.
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNoChapters   ErrorKind = "no_chapters_found"
	KindInvalidRange ErrorKind = "invalid_range"
	KindIO           ErrorKind = "io_failure"
)

// Error is the error type returned by the splitter.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrNoChapters   = &Error{Kind: KindNoChapters}
	ErrInvalidRange = &Error{Kind: KindInvalidRange}
	ErrIO           = &Error{Kind: KindIO}
)

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindIO for errors the splitter did
// not classify.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}
