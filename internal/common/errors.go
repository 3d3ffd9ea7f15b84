// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrDataQuality indicates the input data violates a hard
	// requirement (missing columns, zero rows after cleaning, broken
	// RFM invariants). Fatal to the run.
	ErrDataQuality = errors.New("data quality violation")

	// ErrInsufficientData indicates there is too little data for the
	// requested operation. Fatal at run scope for clustering; at
	// cluster scope for mining the cluster is skipped instead.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidConfig indicates a malformed configuration, rejected
	// before the pipeline executes.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorScope indicates the granularity at which an error is fatal.
type ErrorScope string

const (
	// ScopeRun aborts the whole pipeline execution.
	ScopeRun ErrorScope = "run"
	// ScopeCluster aborts only the affected cluster's analysis.
	ScopeCluster ErrorScope = "cluster"
)

// DataQualityError names the specific input condition that was violated.
type DataQualityError struct {
	Condition string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality violation: %s", e.Condition)
}

func (e *DataQualityError) Unwrap() error {
	return ErrDataQuality
}

// NewDataQualityError creates a DataQualityError for the given condition.
func NewDataQualityError(format string, args ...any) error {
	return &DataQualityError{Condition: fmt.Sprintf(format, args...)}
}

// InsufficientDataError reports too little data for an operation,
// together with the scope at which it is fatal.
type InsufficientDataError struct {
	Condition string
	Scope     ErrorScope
	Cluster   int // meaningful only for ScopeCluster
}

func (e *InsufficientDataError) Error() string {
	if e.Scope == ScopeCluster {
		return fmt.Sprintf("insufficient data for cluster %d: %s", e.Cluster, e.Condition)
	}
	return fmt.Sprintf("insufficient data: %s", e.Condition)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
