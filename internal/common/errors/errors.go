// Package errors provides the service error taxonomy and its mapping onto
// BPMN errors for the claim workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Conversation path
const (
	ErrCodeStoreUnavailable      ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeGenerationUnavailable ErrorCode = "GENERATION_UNAVAILABLE"
	ErrCodeMalformedEvent        ErrorCode = "MALFORMED_EVENT"
)

// Workflow workers
const (
	ErrCodePhotoAnalysisFailed    ErrorCode = "PHOTO_ANALYSIS_FAILED"
	ErrCodePhotoNotFound          ErrorCode = "PHOTO_NOT_FOUND"
	ErrCodeSessionNotFound        ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"
	ErrCodeSearchTimeout          ErrorCode = "SEARCH_TIMEOUT"
)

// Generic
const (
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeAuthentication  ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// KnownCodes lists every code this package defines.
func KnownCodes() []ErrorCode {
	return []ErrorCode{
		ErrCodeStoreUnavailable, ErrCodeGenerationUnavailable, ErrCodeMalformedEvent,
		ErrCodePhotoAnalysisFailed, ErrCodePhotoNotFound, ErrCodeSessionNotFound,
		ErrCodeNotificationSendFailed, ErrCodeIndexingFailed, ErrCodeSearchTimeout,
		ErrCodeExternalService, ErrCodeTimeout, ErrCodeNotFound,
		ErrCodeBusinessRule, ErrCodeAuthentication, ErrCodeInternal,
	}
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so the sentinels below
// work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrStoreUnavailable      = &StandardError{Code: ErrCodeStoreUnavailable}
	ErrGenerationUnavailable = &StandardError{Code: ErrCodeGenerationUnavailable}
	ErrMalformedEvent        = &StandardError{Code: ErrCodeMalformedEvent}
	ErrPhotoAnalysisFailed   = &StandardError{Code: ErrCodePhotoAnalysisFailed}
	ErrSessionNotFound       = &StandardError{Code: ErrCodeSessionNotFound}
)

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code, true
	}
	return "", false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewStoreUnavailableError wraps a session store failure.
func NewStoreUnavailableError(operation string, err error) *StandardError {
	e := newError(ErrCodeStoreUnavailable, "Session store unavailable", err, true)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

// NewGenerationUnavailableError wraps a text generation failure or timeout.
func NewGenerationUnavailableError(err error) *StandardError {
	return newError(ErrCodeGenerationUnavailable, "Text generation unavailable", err, false)
}

// NewMalformedEventError describes an inbound event missing required parts.
func NewMalformedEventError(details string) *StandardError {
	e := newError(ErrCodeMalformedEvent, "Malformed NLU event", nil, false)
	e.Details = details
	return e
}

// NewPhotoAnalysisFailedError wraps a vision collaborator failure.
func NewPhotoAnalysisFailedError(err error) *StandardError {
	return newError(ErrCodePhotoAnalysisFailed, "Photo analysis failed", err, true)
}

// NewPhotoNotFoundError is returned when the uploaded photo cannot be read.
func NewPhotoNotFoundError(path string, err error) *StandardError {
	e := newError(ErrCodePhotoNotFound, "Uploaded photo not found", err, false)
	e.Metadata = map[string]interface{}{"photoPath": path}
	return e
}

// NewSessionNotFoundError is returned when a worker references an unknown session.
func NewSessionNotFoundError(sessionID string) *StandardError {
	e := newError(ErrCodeSessionNotFound, "Claim session not found", nil, false)
	e.Details = fmt.Sprintf("sessionId: %s", sessionID)
	return e
}

// NewNotificationSendFailedError wraps an SES/SNS failure.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification send failed", err, true)
	e.Metadata = map[string]interface{}{"channel": channel}
	return e
}

// NewIndexingFailedError wraps an Elasticsearch indexing failure.
func NewIndexingFailedError(index string, err error) *StandardError {
	e := newError(ErrCodeIndexingFailed, "Claim indexing failed", err, true)
	e.Metadata = map[string]interface{}{"index": index}
	return e
}

// NewSearchTimeoutError is returned when Elasticsearch does not answer in time.
func NewSearchTimeoutError(index string) *StandardError {
	e := newError(ErrCodeSearchTimeout, "Elasticsearch request timeout", nil, true)
	e.Details = fmt.Sprintf("index: %s", index)
	return e
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	e := newError(ErrCodeBusinessRule, message, nil, false)
	e.Details = details
	return e
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err, true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err, true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	e := newError(ErrCodeNotFound, fmt.Sprintf("Resource not found in %s", service), nil, false)
	e.Details = details
	return e
}

func NewAuthenticationError(details string) *StandardError {
	e := newError(ErrCodeAuthentication, "Authentication failed", nil, false)
	e.Details = details
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary
// events in the claim processes. Unmapped codes pass through unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeStoreUnavailable:       "STORE_UNAVAILABLE",
	ErrCodePhotoAnalysisFailed:    "PHOTO_ANALYSIS_FAILED",
	ErrCodePhotoNotFound:          "PHOTO_NOT_FOUND",
	ErrCodeSessionNotFound:        "SESSION_NOT_FOUND",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
	ErrCodeIndexingFailed:         "INDEXING_FAILED",
	ErrCodeSearchTimeout:          "SEARCH_TIMEOUT",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeIndexingFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodePhotoAnalysisFailed,
		ErrCodeSearchTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "SESSION"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "PHOTO"):
		return "AI"
	case strings.Contains(codeStr, "MALFORMED") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
