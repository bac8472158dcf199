package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateExtension is returned when an extension is listed in both
	// the primary and contrib registries
	ErrDuplicateExtension = errors.New("extension registered in both primary and contrib registries")

	// ErrInvalidRegistryFile is returned when a registry file cannot be parsed
	ErrInvalidRegistryFile = errors.New("invalid registry file")
)

// IsDuplicateExtensionError checks if the error is or wraps ErrDuplicateExtension
func IsDuplicateExtensionError(err error) bool {
	return errors.Is(err, ErrDuplicateExtension)
}

// NewDuplicateExtensionError creates a duplicate extension error naming the extension
func NewDuplicateExtensionError(name string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateExtension, name)
}

// NewInvalidRegistryFileError creates an invalid registry file error with the path and cause
func NewInvalidRegistryFileError(path string, cause error) error {
	return fmt.Errorf("%w %s: %v", ErrInvalidRegistryFile, path, cause)
}
