package timecode

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a timecode error.
type ErrorKind string

const (
	KindUnsupportedFramerate ErrorKind = "UNSUPPORTED_FRAMERATE"
	KindInvalidTimecode      ErrorKind = "INVALID_TIMECODE"
	KindInvalidFrameValue    ErrorKind = "INVALID_FRAME_VALUE"
	KindFramerateMismatch    ErrorKind = "FRAMERATE_MISMATCH"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrUnsupportedFramerate = &Error{Kind: KindUnsupportedFramerate, Message: "unsupported framerate"}
	ErrInvalidTimecode      = &Error{Kind: KindInvalidTimecode, Message: "invalid timecode"}
	ErrInvalidFrameValue    = &Error{Kind: KindInvalidFrameValue, Message: "invalid frame value"}
	ErrFramerateMismatch    = &Error{Kind: KindFramerateMismatch, Message: "framerate mismatch"}
)

// Error is returned by every failing operation in this package.
type Error struct {
	Kind    ErrorKind              `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithDetails attaches the offending values to the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not a timecode error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
