// Package errs defines the coded errors shared by the harness, the
// assertion layer and the stand-in storefront.
//
// A test failure reads best when it says what kind of thing went wrong
// (an element never appeared, a wait ran out, a value did not match)
// before it says why. Every error the harness returns carries one Code
// for that, and tests branch on it with Is.
package errs

import (
	"errors"
	"net/http"
)

// Code classifies an error.
type Code string

// Codes raised while driving and checking the storefront.
const (
	ElementNotFound   Code = "element_not_found"
	Timeout           Code = "timeout"
	AssertionMismatch Code = "assertion_mismatch"
	SessionLaunch     Code = "session_launch"
	Unavailable       Code = "unavailable"
)

// Codes the stand-in storefront reports over HTTP.
const (
	InvalidArgument  Code = "invalid_argument"
	NotFound         Code = "not_found"
	PermissionDenied Code = "permission_denied"
	Internal         Code = "internal"
)

// Error pairs a Code with a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Message == "" && e.Err == nil:
		return string(e.Code)
	case e.Message == "":
		return e.Err.Error()
	case e.Err == nil:
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches code and message to cause. errors.Is and errors.As still
// reach cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf returns the code of the outermost coded error in err's chain.
// Uncoded and nil errors report Internal.
func CodeOf(err error) Code {
	var coded *Error
	if !errors.As(err, &coded) || coded.Code == "" {
		return Internal
	}
	return coded.Code
}

// Is reports whether any coded error in err's chain has code. A session
// launch that failed because the driver is missing is both SessionLaunch
// and Unavailable.
func Is(err error, code Code) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.Err
	}
	return false
}

// MessageOf returns the outermost coded message. It is what the storefront
// shows to visitors, so uncoded errors collapse to "internal error" and
// their text never reaches a page.
func MessageOf(err error) string {
	if err == nil {
		return string(Internal)
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return "internal error"
}

var httpStatus = map[Code]int{
	InvalidArgument:  http.StatusBadRequest,
	PermissionDenied: http.StatusForbidden,
	NotFound:         http.StatusNotFound,
	Unavailable:      http.StatusServiceUnavailable,
}

// HTTPStatus is the storefront's response status for code. Harness-only
// codes never reach a response and fall through to 500.
func HTTPStatus(code Code) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
