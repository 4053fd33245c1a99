package vcard

import (
	"errors"
	"fmt"
)

// Code classifies a failure reported by the parser, validator or writer.
type Code int

const (
	OK Code = iota
	InvalidFile
	InvalidCard
	InvalidProperty
	InvalidDateTime
	WriteError
	OtherError
)

var codeNames = [...]string{
	OK:              "OK",
	InvalidFile:     "INV_FILE",
	InvalidCard:     "INV_CARD",
	InvalidProperty: "INV_PROP",
	InvalidDateTime: "INV_DT",
	WriteError:      "WRITE_ERROR",
	OtherError:      "OTHER_ERROR",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return codeNames[OtherError]
	}
	return codeNames[c]
}

// Sentinels for errors.Is matching against an *Error's code.
var (
	ErrInvalidFile     = &Error{Code: InvalidFile}
	ErrInvalidCard     = &Error{Code: InvalidCard}
	ErrInvalidProperty = &Error{Code: InvalidProperty}
	ErrInvalidDateTime = &Error{Code: InvalidDateTime}
	ErrWrite           = &Error{Code: WriteError}
	ErrOther           = &Error{Code: OtherError}
)

// Error is the error type returned by every exported function of this package.
type Error struct {
	Code Code
	Op   string // operation that failed, e.g. "parse" or "validate"
	Line int    // 1-based logical line number, 0 when not applicable
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Code.String()
	if e.Op != "" {
		s = "vcard: " + e.Op + ": " + s
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code carried by err. A nil error is OK, an error that
// did not originate here is OtherError.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return OtherError
}

func newError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

func wrapError(op string, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}
