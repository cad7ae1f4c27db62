// Package errors provides standardized error values for the business-data
// service and their conversion into BPMN errors for the workflow workers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodePrimaryStoreUnavailable ErrorCode = "PRIMARY_STORE_UNAVAILABLE"
	ErrCodeQueryExecutionFailed    ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout            ErrorCode = "QUERY_TIMEOUT"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeSnapshotLoadFailed ErrorCode = "SNAPSHOT_LOAD_FAILED"

	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeUnknownCapability  ErrorCode = "UNKNOWN_CAPABILITY"
	ErrCodeCollectionFailed   ErrorCode = "COLLECTION_FAILED"
	ErrCodeCollectionTimeout  ErrorCode = "COLLECTION_TIMEOUT"
	ErrCodeCollectionCanceled ErrorCode = "COLLECTION_CANCELED"

	ErrCodeEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeEngineTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeEngineRejected    ErrorCode = "WORKFLOW_ENGINE_REJECTED"
)

// StandardError is the internal error shape shared by stores and workers.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

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

func NewPrimaryStoreUnavailableError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePrimaryStoreUnavailable,
		Message:   "Primary store unavailable",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewQueryExecutionFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Primary store query failed",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewQueryTimeoutError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Primary store query timeout",
		Details:   fmt.Sprintf("entity: %s", entity),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewIndexNotFoundError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSnapshotLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotLoadFailed,
		Message:   "Snapshot blob could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownCapabilityError(capability string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownCapability,
		Message:   "Unknown capability",
		Details:   fmt.Sprintf("capability: %s", capability),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCollectionFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollectionFailed,
		Message:   "Business data collection failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCollectionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCollectionTimeout,
		Message:   "Business data collection timeout",
		Details:   "collection exceeded the job deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineError wraps a failed workflow-engine command.
func NewEngineError(code ErrorCode, operation string, err error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   fmt.Sprintf("Workflow engine operation %s failed", operation),
		Details:   err.Error(),
		Retryable: code != ErrCodeEngineRejected,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodePrimaryStoreUnavailable: "PRIMARY_STORE_UNAVAILABLE",
	ErrCodeQueryExecutionFailed:    "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:            "QUERY_TIMEOUT",
	ErrCodeSearchQueryFailed:       "SEARCH_QUERY_FAILED",
	ErrCodeIndexNotFound:           "INDEX_NOT_FOUND",
	ErrCodeSnapshotLoadFailed:      "SNAPSHOT_LOAD_FAILED",
	ErrCodeInvalidInput:            "INVALID_INPUT",
	ErrCodeUnknownCapability:       "UNKNOWN_CAPABILITY",
	ErrCodeCollectionFailed:        "COLLECTION_FAILED",
	ErrCodeCollectionTimeout:       "COLLECTION_TIMEOUT",
	ErrCodeCollectionCanceled:      "COLLECTION_CANCELED",
	ErrCodeEngineUnavailable:       "WORKFLOW_ENGINE_UNAVAILABLE",
	ErrCodeEngineTimeout:           "WORKFLOW_ENGINE_TIMEOUT",
	ErrCodeEngineRejected:          "WORKFLOW_ENGINE_REJECTED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePrimaryStoreUnavailable,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCollectionFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeCollectionTimeout,
		ErrCodeEngineUnavailable,
		ErrCodeEngineTimeout:
		return 2

	default:
		return 0
	}
}

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

// AsStandardError returns the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "SNAPSHOT"):
		return "SNAPSHOT"
	case strings.Contains(codeStr, "COLLECTION"):
		return "COLLECTION"
	case strings.Contains(codeStr, "ENGINE"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
