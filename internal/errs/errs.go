package errs

import (
	"errors"

	"github.com/playwright-community/playwright-go"
)

// Code is a harness error code.
type Code string

const (
	InvalidArgument Code = "invalid_argument"
	NotFound        Code = "not_found"
	Timeout         Code = "timeout"
	RetryExhausted  Code = "retry_exhausted"
	Unavailable     Code = "unavailable"
	Internal        Code = "internal"
)

// Error is a coded harness error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// MessageOf returns the outermost coded message, or "internal error" when
// the error carries no coded wrapper.
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

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	for err != nil {
		var coded *Error
		if !errors.As(err, &coded) {
			return false
		}
		if coded.Code == code {
			return true
		}
		err = coded.Err
	}
	return false
}

// FromEngine classifies an error returned by the browser engine while
// performing op. Engine timeouts become Timeout; a closed page or browser
// becomes Unavailable; everything else is Internal. nil stays nil.
func FromEngine(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, playwright.ErrTimeout):
		return Wrap(Timeout, op+" timed out", err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return Wrap(Unavailable, op+": browser target closed", err)
	default:
		return Wrap(Internal, op, err)
	}
}
