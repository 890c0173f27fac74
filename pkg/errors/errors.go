package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Rule errors
	ErrRuleInvalid      ErrorCode = "RULE_INVALID"
	ErrMergeNoOverride  ErrorCode = "MERGE_NO_OVERRIDE"
	ErrAgentUnknown     ErrorCode = "AGENT_UNKNOWN"
	ErrAgentUnsupported ErrorCode = "AGENT_UNSUPPORTED_DIR"
	ErrDirTypeUnknown   ErrorCode = "DIR_TYPE_UNKNOWN"

	// Delivery errors
	ErrSourceMissing ErrorCode = "SOURCE_MISSING"
	ErrSourceRead    ErrorCode = "SOURCE_READ"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrSymlinkEscape ErrorCode = "SYMLINK_ESCAPE"
	ErrTreeWalk      ErrorCode = "TREE_WALK"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"

	// Manifest errors
	ErrManifestWrite ErrorCode = "MANIFEST_WRITE"
)

// RulesmithError represents a structured error with code and details
type RulesmithError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RulesmithError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RulesmithError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RulesmithError) Is(target error) bool {
	var targetErr *RulesmithError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RulesmithError with the given code and message
func New(code ErrorCode, message string) *RulesmithError {
	return &RulesmithError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RulesmithError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RulesmithError {
	return &RulesmithError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RulesmithError
func Wrap(err error, code ErrorCode, message string) *RulesmithError {
	if err == nil {
		return nil
	}
	return &RulesmithError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RulesmithError {
	if err == nil {
		return nil
	}
	return &RulesmithError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RulesmithError) WithDetail(key string, value interface{}) *RulesmithError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rsErr *RulesmithError
	if errors.As(err, &rsErr) {
		return rsErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// not a RulesmithError
func GetErrorCode(err error) ErrorCode {
	var rsErr *RulesmithError
	if errors.As(err, &rsErr) {
		return rsErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a
// RulesmithError
func GetErrorDetails(err error) map[string]interface{} {
	var rsErr *RulesmithError
	if errors.As(err, &rsErr) {
		return rsErr.Details
	}
	return nil
}
