package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Error type constants. They map the failure taxonomy of the data layer:
// storage is any persistent-store I/O failure, media_index is a failure of
// the externally owned media index, permission is an expected steady-state
// condition rather than a fault.
const (
	ErrTypeStorage    = "storage"
	ErrTypeMediaIndex = "media_index"
	ErrTypePermission = "permission"
	ErrTypeHTTP       = "http"
	ErrTypeConfig     = "config"
	ErrTypeInvalidArg = "invalid_argument"
	ErrTypeNotFound   = "not_found"
	ErrTypeInternal   = "internal"
)

// AppError is the single error value that crosses layer boundaries.
type AppError struct {
	Type      string   `json:"type"`
	Message   string   `json:"message"`
	Cause     error    `json:"-"`
	Code      int      `json:"-"`
	Stack     []string `json:"-"`
	RequestID string   `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) String() string {
	return e.Error()
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithStack records the call stack on the error.
func (e *AppError) WithStack() *AppError {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	e.Stack = stack
	return e
}

// WithRequestID tags the error with the request it occurred in.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates an application error.
func New(errType, message string, cause error, code int) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// Wrap converts an existing error into an AppError. An error that already is
// an AppError keeps its type and code; only the message is replaced.
func Wrap(err error, errType, message string, code int) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:    appErr.Type,
			Message: message,
			Cause:   appErr.Cause,
			Code:    appErr.Code,
			Stack:   appErr.Stack,
		}
	}

	return New(errType, message, err, code)
}

// Is reports whether err carries the given error type.
func Is(err error, errType string) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}

	return false
}

// GetType returns the error type, or "unknown" for foreign errors.
func GetType(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}

	return "unknown"
}

// GetCode returns the HTTP status code associated with the error.
func GetCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return http.StatusInternalServerError
}

// RootCause walks the chain down to the innermost error.
func RootCause(err error) error {
	for err != nil {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
	return err
}

func Internal(message string, cause error) *AppError {
	return New(ErrTypeInternal, message, cause, http.StatusInternalServerError).WithStack()
}

func InvalidArg(param string) *AppError {
	return New(ErrTypeInvalidArg, fmt.Sprintf("invalid arg: %s", param), nil, http.StatusBadRequest).WithStack()
}

func HTTP(message string, cause error) *AppError {
	return New(ErrTypeHTTP, message, cause, http.StatusInternalServerError).WithStack()
}

func Config(message string, cause error) *AppError {
	return New(ErrTypeConfig, message, cause, http.StatusInternalServerError).WithStack()
}

func NotFound(resource string, cause error) *AppError {
	message := fmt.Sprintf("resource not found: %s", resource)
	return New(ErrTypeNotFound, message, cause, http.StatusNotFound).WithStack()
}
