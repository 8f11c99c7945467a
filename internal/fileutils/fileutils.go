// Package fileutils holds the small file helpers shared by the loader, the
// history store and the artifact writer.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/expense-insights/internal/models"
)

// FileExists reports whether filePath exists and is not a directory.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists reports whether dirPath exists and is a directory.
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates dirPath and its parents when missing.
func EnsureDirectoryExists(dirPath string) error {
	if dirPath == "" || dirPath == "." || DirectoryExists(dirPath) {
		return nil
	}
	if err := os.MkdirAll(dirPath, models.PermissionDirectory); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// EnsureParentDirectory creates the directory that will hold filePath.
func EnsureParentDirectory(filePath string) error {
	return EnsureDirectoryExists(filepath.Dir(filePath))
}

// ReadFile reads a whole file, failing early with a readable message when it
// is missing.
func ReadFile(filePath string) ([]byte, error) {
	if !FileExists(filePath) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	data, err := os.ReadFile(filePath) // #nosec G304 -- path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteFile writes data with private permissions, creating parent
// directories as needed.
func WriteFile(filePath string, data []byte) error {
	if err := EnsureParentDirectory(filePath); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, models.PermissionFile); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
