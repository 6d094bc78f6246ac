package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// WrapIfErr wraps err when it is non-nil, otherwise returns nil.
func WrapIfErr(err error, errType, message string, code int) error {
	if err == nil {
		return nil
	}
	return Wrap(err, errType, message, code)
}

// JoinErrors merges multiple errors into one. A single non-nil error is
// returned as-is.
func JoinErrors(errs ...error) error {
	var nonNilErrs []error
	for _, err := range errs {
		if err != nil {
			nonNilErrs = append(nonNilErrs, err)
		}
	}

	if len(nonNilErrs) == 0 {
		return nil
	}

	if len(nonNilErrs) == 1 {
		return nonNilErrs[0]
	}

	var messages []string
	for _, err := range nonNilErrs {
		messages = append(messages, err.Error())
	}

	return Internal(
		fmt.Sprintf("multiple errors occurred: %s", strings.Join(messages, "; ")),
		nonNilErrs[0],
	)
}

// AsAppError converts err to an AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FormatErrorChain renders the full chain with stack traces for debugging.
func FormatErrorChain(err error) string {
	if err == nil {
		return "<nil>"
	}

	var result strings.Builder
	result.WriteString(err.Error())

	var appErr *AppError
	if stderrors.As(err, &appErr) && len(appErr.Stack) > 0 {
		result.WriteString("\nStack Trace:\n")
		for _, frame := range appErr.Stack {
			result.WriteString("  ")
			result.WriteString(frame)
			result.WriteString("\n")
		}
	}

	cause := stderrors.Unwrap(err)
	if cause != nil {
		result.WriteString("\nCaused by: ")
		result.WriteString(FormatErrorChain(cause))
	}

	return result.String()
}
