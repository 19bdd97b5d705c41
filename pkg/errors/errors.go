package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeExportError = "EXPORT_ERROR"
	CodeConfig      = "CONFIG_ERROR"
	CodeIdentity    = "IDENTITY_ERROR"
	CodeAPIError    = "API_ERROR"
	CodeFetch       = "FETCH_ERROR"
	CodePayload     = "PAYLOAD_ERROR"
	CodeCache       = "CACHE_ERROR"
	CodeOutput      = "OUTPUT_ERROR"
)

// Stage tells whether a failed fetch blocks the whole export.
type Stage string

const (
	// StagePrimary covers data the document cannot exist without
	// (profile summary, owned library).
	StagePrimary Stage = "primary"
	// StageSecondary covers per-title and aggregate data that degrades
	// to a default on failure.
	StageSecondary Stage = "secondary"
)

type ExportError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

func NewExportError(message, code string, statusCode int, context map[string]any) *ExportError {
	return &ExportError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *ExportError) WithCause(cause error) *ExportError {
	e.Cause = cause
	return e
}

type ConfigError struct {
	*ExportError
	Field string
}

func NewConfigError(message, field string) *ConfigError {
	return &ConfigError{
		ExportError: &ExportError{
			Message: message,
			Code:    CodeConfig,
			Context: map[string]any{"field": field},
		},
		Field: field,
	}
}

type IdentityError struct {
	*ExportError
	Vanity string
}

func NewIdentityError(vanity string, cause error) *IdentityError {
	return &IdentityError{
		ExportError: &ExportError{
			Message: fmt.Sprintf("vanity URL %q could not be resolved", vanity),
			Code:    CodeIdentity,
			Context: map[string]any{"vanity": vanity},
			Cause:   cause,
		},
		Vanity: vanity,
	}
}

type APIError struct {
	*ExportError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		ExportError: &ExportError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type FetchError struct {
	*ExportError
	Stage     Stage
	Operation string
}

func NewFetchError(stage Stage, operation string, cause error) *FetchError {
	return &FetchError{
		ExportError: &ExportError{
			Message: fmt.Sprintf("%s fetch %s failed", stage, operation),
			Code:    CodeFetch,
			Context: map[string]any{
				"stage":     string(stage),
				"operation": operation,
			},
			Cause: cause,
		},
		Stage:     stage,
		Operation: operation,
	}
}

type PayloadError struct {
	*ExportError
	Operation string
}

func NewPayloadError(operation string, cause error) *PayloadError {
	return &PayloadError{
		ExportError: &ExportError{
			Message: fmt.Sprintf("unexpected %s payload", operation),
			Code:    CodePayload,
			Context: map[string]any{"operation": operation},
			Cause:   cause,
		},
		Operation: operation,
	}
}

type CacheError struct {
	*ExportError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		ExportError: &ExportError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type OutputError struct {
	*ExportError
	Path string
}

func NewOutputError(path string, cause error) *OutputError {
	return &OutputError{
		ExportError: &ExportError{
			Message: fmt.Sprintf("writing %s failed", path),
			Code:    CodeOutput,
			Context: map[string]any{"path": path},
			Cause:   cause,
		},
		Path: path,
	}
}

// IsPrimaryFetch reports whether err carries a fetch failure that must abort the export.
func IsPrimaryFetch(err error) bool {
	var fe *FetchError
	return stderrors.As(err, &fe) && fe.Stage == StagePrimary
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if stderrors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}
