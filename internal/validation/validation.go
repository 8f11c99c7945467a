// Package validation checks command-line paths before any work starts.
package validation

import (
	"fmt"
	"os"

	"fjacquet/expense-insights/internal/analyticserror"
)

// IsValidInputFile checks that path names an existing regular file.
func IsValidInputFile(path string) error {
	if path == "" {
		return &analyticserror.InvalidArgumentError{Argument: "input", Value: path, Reason: "must not be empty"}
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return &analyticserror.InvalidArgumentError{Argument: "input", Value: path, Reason: "not a regular file"}
	}
	return nil
}

// IsValidOutputDirectory accepts a missing directory (it will be created)
// but rejects a path that already exists as something else.
func IsValidOutputDirectory(path string) error {
	if path == "" {
		return &analyticserror.InvalidArgumentError{Argument: "output-dir", Value: path, Reason: "must not be empty"}
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() {
		return &analyticserror.InvalidArgumentError{Argument: "output-dir", Value: path, Reason: "exists and is not a directory"}
	}
	return nil
}
