package models

import (
	"errors"
	"fmt"
)

// Error codes for structured error handling.
const (
	ErrCodeFormat            = "FORMAT_ERROR"
	ErrCodeAuth              = "AUTH_ERROR"
	ErrCodeMissingCredential = "MISSING_CREDENTIAL"
	ErrCodeSizeLimit         = "SIZE_LIMIT"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeConfig            = "CONFIG_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Sentinel errors
var (
	ErrFormat            = errors.New("format error")
	ErrAuthentication    = errors.New("authentication failed")
	ErrMissingCredential = errors.New("missing credential")
	ErrTooLarge          = errors.New("file too large")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// FormatError reports malformed key, container or metadata input.
type FormatError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is makes every FormatError match ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// MissingCredentialError reports an absent key or password.
type MissingCredentialError struct {
	Credential string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is required", e.Credential)
}

func (e *MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// ErrorCode maps an error to its structured code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return ErrCodeAuth
	case errors.Is(err, ErrMissingCredential):
		return ErrCodeMissingCredential
	case errors.Is(err, ErrFormat):
		return ErrCodeFormat
	case errors.Is(err, ErrTooLarge):
		return ErrCodeSizeLimit
	case errors.Is(err, ErrInvalidConfig):
		return ErrCodeConfig
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return ErrCodeStorage
	}

	return ErrCodeInternal
}

// StorageError wraps a failure reading or writing an artifact.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
