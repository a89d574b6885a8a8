// Package kabierr is the error taxonomy shared by both CLIs (spec §7):
// a small set of sentinel codes, a uniform payload, and a panic/recover
// convention for the class of error that can only mean a graph invariant
// was violated.
package kabierr

import "errors"

// Code identifies the class of failure. Callers switch on it to choose an
// exit status; it is never inspected for anything finer-grained than that.
type Code string

const (
	IOOpen      Code = "IO_OPEN"
	IOFormat    Code = "IO_FORMAT"
	ArgMissing  Code = "ARG_MISSING"
	ArgConflict Code = "ARG_CONFLICT"
	NotFound    Code = "NOT_FOUND"
	Internal    Code = "INTERNAL"
)

// Error is the uniform error payload for both CLIs.
type Error struct {
	Code    Code
	Message string
	Detail  string
}

func (e Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// Wrap builds an Error of code carrying msg, with inner's text folded in
// as Detail. A nil inner is fine — Detail is simply left empty.
func Wrap(code Code, msg string, inner error) error {
	e := Error{Code: code, Message: msg}
	if inner != nil {
		e.Detail = inner.Error()
	}
	return e
}

// New builds an Error of code with no wrapped cause.
func New(code Code, msg string) error {
	return Error{Code: code, Message: msg}
}

// CodeOf extracts the Code from err if it (or something in its chain,
// found via errors.As) is a kabierr.Error, and reports false otherwise.
func CodeOf(err error) (Code, bool) {
	var e Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Code, true
}
