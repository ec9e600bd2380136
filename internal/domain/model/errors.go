package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScorerUnavailable is returned when no scoring strategy is configured.
	ErrScorerUnavailable = errors.New("fraud: scorer unavailable")

	// ErrClassifierUnavailable is returned when the classifier strategy has no model.
	ErrClassifierUnavailable = errors.New("fraud: classifier model not loaded")

	// ErrMissingColumns is returned when an upload lacks a required column.
	ErrMissingColumns = errors.New("fraud: missing required columns")
)

// StorageError wraps a persistence failure with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("fraud: storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err unless it is already a StorageError.
func NewStorageError(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// ScoringError reports a failure to score one record of a batch.
type ScoringError struct {
	Err   error
	Index int
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("fraud: scoring record %d failed: %v", e.Index, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// ConfigurationError reports a component that cannot run as configured.
type ConfigurationError struct {
	Component string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fraud: %s misconfigured: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError reports structurally invalid input, such as missing columns.
type ValidationError struct {
	Err     error
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }
