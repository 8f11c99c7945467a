// Package analyticserror defines the structured errors returned by the
// ingestion, analytics and forecasting packages. Every error matches one of
// the sentinels below through errors.Is, so callers can branch without type
// assertions.
package analyticserror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyDataset     = errors.New("empty dataset")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInsufficientData = errors.New("insufficient data")
	ErrMissingColumns   = errors.New("missing columns")
	ErrService          = errors.New("external service failure")
)

// EmptyDatasetError is returned when cleaning removed every row.
type EmptyDatasetError struct {
	Source  string
	Dropped int
}

func (e *EmptyDatasetError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("no usable transactions after cleaning (%d rows dropped)", e.Dropped)
	}
	return fmt.Sprintf("no usable transactions in %s after cleaning (%d rows dropped)", e.Source, e.Dropped)
}

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

// InvalidArgumentError reports an out-of-range caller parameter.
type InvalidArgumentError struct {
	Argument string
	Value    interface{}
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Argument, e.Value, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// InsufficientDataError is returned when a category has too little monthly
// history to fit and evaluate a forecast.
type InsufficientDataError struct {
	Category string
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("category %q has %d monthly rows, at least %d required",
		e.Category, e.Rows, e.Required)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// MissingColumnsError is returned when the CSV header lacks required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV header is missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }

// ServiceError wraps a failure of an external collaborator (LLM, sandbox).
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrService }
