// errors.go: error kinds and propagation policy for the elog engine
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/agilira/go-errors"
)

// Error codes surfaced by the core, grouped by the error kind taxonomy of
// the engine's error handling design. Every code carries the ELOG_ prefix,
// enforced by validateErrorCodes at package init.
const (
	ErrCodeInvalidArgument   errors.ErrorCode = "ELOG_INVALID_ARGUMENT"
	ErrCodeInvalidState      errors.ErrorCode = "ELOG_INVALID_STATE"
	ErrCodeResourceExhausted errors.ErrorCode = "ELOG_RESOURCE_EXHAUSTED"
	ErrCodeIoError           errors.ErrorCode = "ELOG_IO_ERROR"
	ErrCodeDataCorrupt       errors.ErrorCode = "ELOG_DATA_CORRUPT"
	ErrCodeProtocolError     errors.ErrorCode = "ELOG_PROTOCOL_ERROR"
	ErrCodeTimeout           errors.ErrorCode = "ELOG_TIMEOUT"
	ErrCodeServerError       errors.ErrorCode = "ELOG_SERVER_ERROR"
)

// ErrorHandler receives errors that the core cannot propagate through a
// normal return path (hot-path write failures, re-entrant faults).
type ErrorHandler func(err *errors.Error)

// defaultErrorHandler prints to stderr. It must never call back into the
// logging engine, to avoid the exact recursion the Report Channel exists
// to bound.
var defaultErrorHandler ErrorHandler = func(err *errors.Error) {
	fmt.Fprintf(os.Stderr, "[elog] %s: %s\n", err.Code, err.Message)
	if err.Cause != nil {
		fmt.Fprintf(os.Stderr, "[elog] caused by: %v\n", err.Cause)
	}
}

var currentErrorHandler = defaultErrorHandler

// SetErrorHandler installs a custom error handler for the engine's internal
// diagnostics. Passing nil restores the stderr default.
func SetErrorHandler(handler ErrorHandler) {
	if handler == nil {
		currentErrorHandler = defaultErrorHandler
		return
	}
	currentErrorHandler = handler
}

// GetErrorHandler returns the currently installed error handler.
func GetErrorHandler() ErrorHandler {
	return currentErrorHandler
}

func handleError(err *errors.Error) {
	if err == nil {
		return
	}
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context["go_version"] = runtime.Version()
	currentErrorHandler(err)
}

// newEngineError creates a code-tagged error carrying the operation name
// and caller context, the standard shape returned from configuration-time
// and target-lifecycle operations.
func newEngineError(code errors.ErrorCode, operation, message string) *errors.Error {
	err := errors.New(code, message).
		WithSeverity("error").
		WithContext("component", "elog").
		WithContext("operation", operation).
		WithContext("timestamp", time.Now().UTC())

	if pc, file, line, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			_ = err.WithContext("caller_func", fn.Name())
		}
		_ = err.WithContext("caller_file", file)
		_ = err.WithContext("caller_line", line)
	}
	return err
}

func wrapEngineError(cause error, code errors.ErrorCode, message string) *errors.Error {
	err := errors.Wrap(cause, code, message).
		WithSeverity("error").
		WithContext("component", "elog").
		WithContext("timestamp", time.Now().UTC())
	return err
}

// IsRetryableError reports whether err is retryable per go-errors severity.
func IsRetryableError(err error) bool {
	if e, ok := err.(*errors.Error); ok {
		return e.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code, or the empty code if err is not one
// of this package's typed errors.
func GetErrorCode(err error) errors.ErrorCode {
	if e, ok := err.(*errors.Error); ok {
		return e.ErrorCode()
	}
	return ""
}

// HasErrorCode reports whether err carries the given code.
func HasErrorCode(err error, code errors.ErrorCode) bool {
	return errors.HasCode(err, code)
}

// recoverAsFault converts a panic into a *errors.Error carrying a stack
// trace, for use at every hot-path write-dispatch boundary (the core must
// never propagate a failure upward from the write path).
func recoverAsFault(code errors.ErrorCode, operation string) *errors.Error {
	if r := recover(); r != nil {
		err := newEngineError(code, operation, fmt.Sprintf("recovered panic in %s: %v", operation, r))
		_ = err.WithContext("panic_value", r)
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		_ = err.WithContext("panic_stack", string(buf[:n]))
		return err
	}
	return nil
}

// validateErrorCodes panics at init if any error code is missing the
// required ELOG_ prefix, guarding against a future typo that would silently
// break HasErrorCode matching.
func validateErrorCodes() {
	codes := []errors.ErrorCode{
		ErrCodeInvalidArgument, ErrCodeInvalidState, ErrCodeResourceExhausted,
		ErrCodeIoError, ErrCodeDataCorrupt, ErrCodeProtocolError,
		ErrCodeTimeout, ErrCodeServerError,
	}
	for _, code := range codes {
		s := string(code)
		if len(s) < 5 || s[:5] != "ELOG_" {
			panic(fmt.Sprintf("error code %s does not follow the ELOG_ prefix convention", code))
		}
	}
}

func init() {
	validateErrorCodes()
}
