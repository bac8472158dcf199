package docs

import (
	"errors"
	"fmt"
)

// Fatal rendering conditions. Each one points at a defect in the schema or
// the registries and aborts rendering of the file it was found in.
var (
	// ErrUnknownFieldType is returned when a scalar field kind has no entry in
	// the scalar name table
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrUnknownExtension is returned when an extension is in neither the
	// primary nor the contrib registry
	ErrUnknownExtension = errors.New("unknown extension")

	// ErrUnknownExtensionCategory is returned when a category is in neither
	// category index
	ErrUnknownExtensionCategory = errors.New("unable to find extension category")

	// ErrUnknownSecurityPosture is returned when an extension references a
	// security posture with no description
	ErrUnknownSecurityPosture = errors.New("unknown security posture")

	// ErrMissingManifestEntry is returned when a security annotated field has
	// no manifest record
	ErrMissingManifestEntry = errors.New("missing protodoc manifest YAML")

	// ErrMissingTitle is returned when an API file with content has no
	// [#protodoc-title:] annotation
	ErrMissingTitle = errors.New("API proto file missing [#protodoc-title:] annotation")

	// ErrInvalidRST is returned in strict mode when a rendered block fails
	// validation
	ErrInvalidRST = errors.New("bad RST")
)

// Error is a fatal rendering condition carrying the offending identifier.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Name is the type, field, file, extension or category name at fault.
	Name  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Name, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Name)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, name string) *Error {
	return &Error{Kind: kind, Name: name}
}

// IsUnknownExtensionError checks if the error is an unknown extension error
func IsUnknownExtensionError(err error) bool {
	return errors.Is(err, ErrUnknownExtension)
}

// IsMissingTitleError checks if the error is a missing title error
func IsMissingTitleError(err error) bool {
	return errors.Is(err, ErrMissingTitle)
}

// ErrorName returns the offending identifier of a rendering error, or "" if
// err is not an *Error.
func ErrorName(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Name
	}
	return ""
}
