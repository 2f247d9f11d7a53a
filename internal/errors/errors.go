package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/zsiec/timeframe/pkg/timecode"
)

// ErrorType classifies an API error. It is the "type" field of error bodies.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeRateLimit   ErrorType = "RATE_LIMIT"
	ErrorTypeInternal    ErrorType = "INTERNAL_ERROR"
	ErrorTypeServiceDown ErrorType = "SERVICE_DOWN"

	// Conversion failures reported by pkg/timecode.
	ErrorTypeUnsupportedFramerate ErrorType = ErrorType(timecode.KindUnsupportedFramerate)
	ErrorTypeInvalidTimecode      ErrorType = ErrorType(timecode.KindInvalidTimecode)
	ErrorTypeInvalidFrameValue    ErrorType = ErrorType(timecode.KindInvalidFrameValue)
	ErrorTypeFramerateMismatch    ErrorType = ErrorType(timecode.KindFramerateMismatch)
)

// AppError is an error with the context needed to render an API response.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

func New(errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message, http.StatusBadRequest)
}

func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewConflictError(message string) *AppError {
	return New(ErrorTypeConflict, message, http.StatusConflict)
}

func NewRateLimitError(message string) *AppError {
	return New(ErrorTypeRateLimit, message, http.StatusTooManyRequests)
}

func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message, http.StatusInternalServerError)
}

func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message, http.StatusInternalServerError)
}

func NewServiceDownError(service string) *AppError {
	return New(ErrorTypeServiceDown, fmt.Sprintf("%s service is currently unavailable", service), http.StatusServiceUnavailable)
}

// timecodeStatus maps timecode error kinds to response codes.
var timecodeStatus = map[timecode.ErrorKind]int{
	timecode.KindUnsupportedFramerate: http.StatusBadRequest,
	timecode.KindInvalidTimecode:      http.StatusUnprocessableEntity,
	timecode.KindInvalidFrameValue:    http.StatusUnprocessableEntity,
	timecode.KindFramerateMismatch:    http.StatusConflict,
}

// FromTimecode converts a pkg/timecode error into an AppError carrying the
// error's kind, message and details. Other errors become internal errors.
func FromTimecode(err error) *AppError {
	var tcErr *timecode.Error
	if !stderrors.As(err, &tcErr) {
		return WrapInternalError(err, "An unexpected error occurred")
	}

	status, ok := timecodeStatus[tcErr.Kind]
	if !ok {
		status = http.StatusBadRequest
	}

	return &AppError{
		Type:       ErrorType(tcErr.Kind),
		Message:    tcErr.Message,
		Details:    tcErr.Details,
		HTTPStatus: status,
		Err:        err,
	}
}

// GetAppError finds an AppError in err's chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether err's chain holds an AppError.
func IsAppError(err error) bool {
	_, ok := GetAppError(err)
	return ok
}
