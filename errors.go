// errors.go: comprehensive error handling for mnemo cache operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all cache operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package mnemo

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for Mnemo cache operations
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig     errors.ErrorCode = "MNEMO_INVALID_CONFIG"
	ErrCodeNilSource         errors.ErrorCode = "MNEMO_NIL_SOURCE"
	ErrCodeInvalidTTL        errors.ErrorCode = "MNEMO_INVALID_TTL"
	ErrCodeInvalidConfigPath errors.ErrorCode = "MNEMO_INVALID_CONFIG_PATH"

	// Operation errors (2xxx)
	ErrCodeEmptyKey     errors.ErrorCode = "MNEMO_EMPTY_KEY"
	ErrCodeCacheClosed  errors.ErrorCode = "MNEMO_CACHE_CLOSED"
	ErrCodeTypeMismatch errors.ErrorCode = "MNEMO_TYPE_MISMATCH"

	// Lookup errors (3xxx)
	ErrCodeLookupFailed   errors.ErrorCode = "MNEMO_LOOKUP_FAILED"
	ErrCodePanicRecovered errors.ErrorCode = "MNEMO_PANIC_RECOVERED"

	// Internal errors (5xxx)
	ErrCodeInternalError errors.ErrorCode = "MNEMO_INTERNAL_ERROR"
)

// Common error messages
const (
	msgInvalidConfig     = "invalid cache configuration"
	msgNilSource         = "data source cannot be nil"
	msgInvalidTTL        = "invalid TTL: must be greater than zero"
	msgInvalidConfigPath = "invalid or unreadable configuration file path"
	msgEmptyKey          = "key cannot be empty"
	msgCacheClosed       = "cache is closed"
	msgTypeMismatch      = "cached value has unexpected type"
	msgLookupFailed      = "data source lookup failed"
	msgPanicRecovered    = "panic recovered in cache operation"
	msgInternalError     = "internal cache error"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrInvalidConfig creates a generic configuration error
func NewErrInvalidConfig(reason string) error {
	return errors.NewWithField(ErrCodeInvalidConfig, msgInvalidConfig, "reason", reason)
}

// NewErrNilSource creates an error for a missing data source
func NewErrNilSource() error {
	return errors.NewWithField(ErrCodeNilSource, msgNilSource, "field", "Source")
}

// NewErrInvalidTTL creates an error for invalid TTL
func NewErrInvalidTTL(ttl interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidTTL, msgInvalidTTL, map[string]interface{}{
		"provided_ttl": ttl,
	})
}

// NewErrInvalidConfigPath creates an error for an unusable configuration file path
func NewErrInvalidConfigPath(path string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInvalidConfigPath, msgInvalidConfigPath).
			WithContext("path", path)
	}
	return errors.NewWithField(ErrCodeInvalidConfigPath, msgInvalidConfigPath, "path", path)
}

// =============================================================================
// OPERATION ERRORS
// =============================================================================

// NewErrEmptyKey creates an error when key is empty
func NewErrEmptyKey(operation string) error {
	return errors.NewWithField(ErrCodeEmptyKey, msgEmptyKey, "operation", operation)
}

// NewErrCacheClosed creates an error for operations on a closed cache
func NewErrCacheClosed(operation string) error {
	return errors.NewWithField(ErrCodeCacheClosed, msgCacheClosed, "operation", operation)
}

// NewErrTypeMismatch creates an error when a cached value has the wrong dynamic type
func NewErrTypeMismatch(key string, want string, got string) error {
	return errors.NewWithContext(ErrCodeTypeMismatch, msgTypeMismatch, map[string]interface{}{
		"key":  key,
		"want": want,
		"got":  got,
	})
}

// =============================================================================
// LOOKUP ERRORS
// =============================================================================

// NewErrLookupFailed creates an error when the data source fails.
// The same error instance is delivered to every caller joined to the
// failed computation, and again on later hits while the failure stays cached.
func NewErrLookupFailed(key string, cause error) error {
	return errors.Wrap(cause, ErrCodeLookupFailed, msgLookupFailed).
		WithContext("key", key).
		AsRetryable()
}

// NewErrPanicRecovered creates an error when a panic is recovered
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// INTERNAL ERRORS
// =============================================================================

// NewErrInternal creates a generic internal error
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsEmptyKey checks if error is an empty key error
func IsEmptyKey(err error) bool {
	return errors.HasCode(err, ErrCodeEmptyKey)
}

// IsCacheClosed checks if error is a closed cache error
func IsCacheClosed(err error) bool {
	return errors.HasCode(err, ErrCodeCacheClosed)
}

// IsTypeMismatch checks if error is a type mismatch error
func IsTypeMismatch(err error) bool {
	return errors.HasCode(err, ErrCodeTypeMismatch)
}

// IsLookupFailed checks if error is a failed data source lookup
func IsLookupFailed(err error) bool {
	return errors.HasCode(err, ErrCodeLookupFailed)
}

// IsPanicRecovered checks if error is a recovered panic
func IsPanicRecovered(err error) bool {
	return errors.HasCode(err, ErrCodePanicRecovered)
}

// IsConfigError checks if error is a configuration error
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	// Check if error implements ErrorCoder interface
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvalidConfig || code == ErrCodeNilSource ||
			code == ErrCodeInvalidTTL || code == ErrCodeInvalidConfigPath
	}
	return false
}

// IsRetryable checks if the error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Check if error implements Retryable interface
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	// Type assert to *errors.Error to access Context field
	var mnemoErr *errors.Error
	if goerrors.As(err, &mnemoErr) {
		return mnemoErr.Context
	}
	return nil
}
