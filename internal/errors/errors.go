// Package errors provides a lightweight structured error type (NormalizerError)
// for category-based classification and degradation semantics across the
// normalization pipeline.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a normalizer error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryStorage ErrorCategory = "storage"
	CategoryNetwork ErrorCategory = "network"

	// Normalization and processing errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryMetadata   ErrorCategory = "metadata"
	CategoryRewrite    ErrorCategory = "rewrite"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// NormalizerError is a structured error with category, retryability, and context
type NormalizerError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for NormalizerError
type ContextFields map[string]any

// Error implements the error interface
func (e *NormalizerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *NormalizerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *NormalizerError) WithContext(key string, value any) *NormalizerError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new NormalizerError
func New(category ErrorCategory, severity ErrorSeverity, message string) *NormalizerError {
	return &NormalizerError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new NormalizerError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *NormalizerError {
	return &NormalizerError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable NormalizerError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *NormalizerError {
	return &NormalizerError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ne, ok := err.(*NormalizerError); ok {
		return ne.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if ne, ok := err.(*NormalizerError); ok {
		return ne.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a NormalizerError
func GetCategory(err error) ErrorCategory {
	if ne, ok := err.(*NormalizerError); ok {
		return ne.Category
	}
	return CategoryInternal
}

// ConfigError creates a new fatal configuration error
func ConfigError(message string) *NormalizerError {
	return &NormalizerError{
		Category:  CategoryConfig,
		Severity:  SeverityFatal,
		Message:   message,
		Retryable: false,
	}
}

// ValidationError creates a new validation error
func ValidationError(message string) *NormalizerError {
	return &NormalizerError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// StorageError wraps an object-store failure as retryable
func StorageError(err error, message string) *NormalizerError {
	return &NormalizerError{
		Category:  CategoryStorage,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}
