package common

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration for configuration-related errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeValidation for ticket validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimestamp for malformed timestamp fields
	ErrorTypeTimestamp ErrorType = "timestamp"
	// ErrorTypeDerivation for per-ticket metric derivation errors
	ErrorTypeDerivation ErrorType = "derivation"
	// ErrorTypeAggregation for aggregate computation errors
	ErrorTypeAggregation ErrorType = "aggregation"
	// ErrorTypeStorage for storage/persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeReport for report rendering errors
	ErrorTypeReport ErrorType = "report"
	// ErrorTypeInternal for internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// AnalyzerError represents a structured error with context
type AnalyzerError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *AnalyzerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AnalyzerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AnalyzerError) WithContext(key string, value interface{}) *AnalyzerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AnalyzerError) WithCause(cause error) *AnalyzerError {
	e.Cause = cause
	return e
}

// NewError creates a new AnalyzerError
func NewError(errorType ErrorType, code, message string) *AnalyzerError {
	return &AnalyzerError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeConfiguration, code, message)
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeValidation, code, message)
}

// NewTimestampError creates a timestamp parse error
func NewTimestampError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeTimestamp, code, message)
}

// NewDerivationError creates a metric derivation error
func NewDerivationError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeDerivation, code, message)
}

// NewAggregationError creates an aggregation error
func NewAggregationError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeAggregation, code, message)
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeStorage, code, message)
}

// NewReportError creates a report rendering error
func NewReportError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeReport, code, message)
}

// NewInternalError creates an internal system error
func NewInternalError(code, message string) *AnalyzerError {
	return NewError(ErrorTypeInternal, code, message)
}

// WrapError wraps an existing error with AnalyzerError context
func WrapError(err error, errorType ErrorType, code, message string) *AnalyzerError {
	return &AnalyzerError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     err,
	}
}
