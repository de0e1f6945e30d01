// Package cferrors defines coded errors for the analyzer's failure modes.
package cferrors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NoSourceFiles indicates discovery found nothing to analyze
	NoSourceFiles ErrorCode = "NO_SOURCE_FILES"
	// ParseFailure indicates a file could not be parsed
	ParseFailure ErrorCode = "PARSE_FAILURE"
	// StorageFailure indicates the run history database failed
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// ConfigInvalid indicates an unusable configuration
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ParserUnavailable indicates the binary was built without tree-sitter
	ParserUnavailable ErrorCode = "PARSER_UNAVAILABLE"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalysisError represents a failure with a stable code and optional cause
type AnalysisError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// New creates a new AnalysisError
func New(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// CodeOf returns the error code carried by err, or InternalError for plain errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if ae, ok := err.(*AnalysisError); ok {
		return ae.Code
	}
	return InternalError
}
