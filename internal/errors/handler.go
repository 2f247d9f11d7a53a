package errors

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/zsiec/timeframe/internal/logger"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error     ErrorDetails `json:"error"`
	RequestID string       `json:"request_id,omitempty"`
}

type ErrorDetails struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler renders errors as JSON and logs them.
type ErrorHandler struct {
	logger *logrus.Logger
}

func NewErrorHandler(log *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{logger: log}
}

// HandleError writes err. AppErrors keep their status, timecode errors are
// mapped with FromTimecode and anything else is a 500.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := GetAppError(err)
	if !ok {
		appErr = FromTimecode(err)
	}

	requestID := logger.GetRequestID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get(logger.RequestIDHeader)
	}

	entry := h.entry(r).WithFields(logrus.Fields{
		"error_type": appErr.Type,
		"status":     appErr.HTTPStatus,
	})
	if appErr.Code != "" {
		entry = entry.WithField("error_code", appErr.Code)
	}

	switch {
	case appErr.HTTPStatus >= http.StatusInternalServerError:
		entry.Error(appErr.Error())
	case appErr.HTTPStatus == http.StatusTooManyRequests:
		entry.Debug(appErr.Error())
	default:
		entry.Warn(appErr.Error())
	}

	h.writeJSON(w, appErr.HTTPStatus, ErrorResponse{
		Error: ErrorDetails{
			Type:    appErr.Type,
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		},
		RequestID: requestID,
	})
}

func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, NewNotFoundError("endpoint"))
}

func (h *ErrorHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, New(ErrorTypeValidation, "Method not allowed", http.StatusMethodNotAllowed))
}

// HandlePanic logs a recovered panic and answers 500.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.entry(r).WithField("panic", recovered).Error("Panic recovered in HTTP handler")
	h.HandleError(w, r, NewInternalError("An unexpected error occurred"))
}

// Middleware recovers handler panics.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				h.HandlePanic(w, r, recovered)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// entry prefers the request-scoped entry set by the request logger.
func (h *ErrorHandler) entry(r *http.Request) *logrus.Entry {
	if logger.GetRequestID(r.Context()) != "" {
		return logger.FromContext(r.Context())
	}
	return h.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
}

func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}
