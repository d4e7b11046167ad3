package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch/transport errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML or response parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeScoring represents scoring/LLM errors
	ErrorTypeScoring ErrorType = "scoring"
	// ErrorTypeStorage represents deal store errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNotification represents Telegram delivery errors
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents an error scoped to one pipeline component. The
// Provider field names the site or service the error belongs to so a failure
// is never attributed wider than its actual scope.
type PipelineError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying on a later cycle
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeScoring, ErrorTypeNotification:
		return true
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, provider, message string, err error) *PipelineError {
	return &PipelineError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(provider, message string, err error) *PipelineError {
	return New(ErrorTypeNetwork, provider, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(provider, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, provider, message, err)
}

// NewScoring creates a new scoring error
func NewScoring(provider, message string, err error) *PipelineError {
	return New(ErrorTypeScoring, provider, message, err)
}

// NewStorage creates a new storage error
func NewStorage(message string, err error) *PipelineError {
	return New(ErrorTypeStorage, "store", message, err)
}

// NewNotification creates a new notification error
func NewNotification(message string, err error) *PipelineError {
	return New(ErrorTypeNotification, "telegram", message, err)
}

// NewValidation creates a new validation error
func NewValidation(provider, message string) *PipelineError {
	return New(ErrorTypeValidation, provider, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
