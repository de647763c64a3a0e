package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of an upstream failure
type ErrorType string

const (
	// ErrTypeProvider indicates an unclassified provider-side failure
	ErrTypeProvider ErrorType = "provider"

	// ErrTypeAuthentication indicates a rejected credential
	ErrTypeAuthentication ErrorType = "authentication"

	// ErrTypeRateLimit indicates rate limiting
	ErrTypeRateLimit ErrorType = "rate_limit"

	// ErrTypeQuota indicates quota/billing exhaustion
	ErrTypeQuota ErrorType = "quota"

	// ErrTypeNetwork indicates the request never reached the service
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeTimeout indicates the request or context deadline expired
	ErrTypeTimeout ErrorType = "timeout"

	// ErrTypeInvalidRequest indicates the service rejected the request shape
	ErrTypeInvalidRequest ErrorType = "invalid_request"

	// ErrTypeModelUnavailable indicates the model is unknown or overloaded
	ErrTypeModelUnavailable ErrorType = "model_unavailable"

	// ErrTypeEmptyResponse indicates a successful call with no payload
	ErrTypeEmptyResponse ErrorType = "empty_response"

	// ErrTypeNotFound indicates an unregistered provider name
	ErrTypeNotFound ErrorType = "not_found"

	// ErrTypeInternal indicates internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// UpstreamError represents a failed or empty call to the model service
type UpstreamError struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// Provider indicates which provider caused the error
	Provider string `json:"provider,omitempty"`

	// StatusCode for HTTP-related errors
	StatusCode int `json:"status_code,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`

	// Retryable indicates if a later attempt might succeed. Nothing retries
	// automatically; callers surface it to the user.
	Retryable bool `json:"retryable"`
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	var parts []string

	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}

	parts = append(parts, fmt.Sprintf("type=%s", e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Is matches another UpstreamError of the same type
func (e *UpstreamError) Is(target error) bool {
	if ue, ok := target.(*UpstreamError); ok {
		return e.Type == ue.Type
	}
	return false
}

// InputError represents a request with nothing to analyze or an unusable attachment
type InputError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *InputError) Error() string {
	return fmt.Sprintf("input error for field '%s': %s", e.Field, e.Message)
}

// ConfigurationError represents a missing or invalid credential/endpoint
type ConfigurationError struct {
	Provider string `json:"provider"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for provider '%s', field '%s': %s",
		e.Provider, e.Field, e.Message)
}

// ParseError represents a reply that is not JSON of the expected shape
type ParseError struct {
	Message string `json:"message"`

	// Violations lists schema violations as "location: problem"
	Violations []string `json:"violations,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := "parse error: " + e.Message
	if len(e.Violations) > 0 {
		msg += " (" + strings.Join(e.Violations, "; ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(errType ErrorType, message, provider string) *UpstreamError {
	return &UpstreamError{
		Type:      errType,
		Message:   message,
		Provider:  provider,
		Retryable: isRetryableError(errType),
	}
}

// NewUpstreamErrorWithCause creates an upstream error with an underlying cause
func NewUpstreamErrorWithCause(errType ErrorType, message, provider string, cause error) *UpstreamError {
	e := NewUpstreamError(errType, message, provider)
	e.Cause = cause
	return e
}

// NewInputError creates an input error
func NewInputError(field, value, message string) *InputError {
	return &InputError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(provider, field, message string) *ConfigurationError {
	return &ConfigurationError{
		Provider: provider,
		Field:    field,
		Message:  message,
	}
}

// NewParseError creates a parse error
func NewParseError(message string, cause error, violations ...string) *ParseError {
	return &ParseError{
		Message:    message,
		Violations: violations,
		Cause:      cause,
	}
}

// isRetryableError determines if an error type is transient
func isRetryableError(errType ErrorType) bool {
	switch errType {
	case ErrTypeRateLimit, ErrTypeTimeout, ErrTypeNetwork, ErrTypeModelUnavailable:
		return true
	default:
		return false
	}
}

// IsRetryableError checks if an error is transient
func IsRetryableError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Retryable
}

// IsUpstreamError checks if an error came from the model call
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Type == ErrTypeRateLimit
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsInputError checks if an error is an input error
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// UpstreamErrorType returns the upstream category of err, or "" if it is not one
func UpstreamErrorType(err error) ErrorType {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Type
	}
	return ""
}
