package annotations

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Annotation names recognised inside comments.
//
// Annotations have the format: [#name: value]
// Examples:
//
//	// [#protodoc-title: HTTP connection manager]
//	// [#not-implemented-hide:]
//	// [#extension-category: envoy.filters.http,envoy.filters.network]
const (
	NextFreeField      = "next-free-field"
	NotImplementedHide = "not-implemented-hide"
	NextMajorVersion   = "next-major-version"
	CommentAnnotation  = "comment"
	DocTitle           = "protodoc-title"
	Extension          = "extension"
	ExtensionCategory  = "extension-category"
)

var validAnnotations = map[string]struct{}{
	NextFreeField:      {},
	NotImplementedHide: {},
	NextMajorVersion:   {},
	CommentAnnotation:  {},
	DocTitle:           {},
	Extension:          {},
	ExtensionCategory:  {},
}

// ErrUnknownAnnotation is returned when a comment carries an annotation name
// outside the recognised vocabulary.
var ErrUnknownAnnotation = errors.New("unknown annotation")

var annotationRegex = regexp.MustCompile(`(?s)\[#([\w-]+?):\s*(.*?)\](\s?)`)

// Annotations maps annotation names to their values.
type Annotations map[string]string

// Has reports whether the annotation is present.
func (a Annotations) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Get returns the annotation value and whether it was present.
func (a Annotations) Get(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// List splits a comma separated annotation value, dropping empty items.
func (a Annotations) List(name string) []string {
	v, ok := a[name]
	if !ok {
		return nil
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// IsValid checks if an annotation name belongs to the recognised vocabulary.
func IsValid(name string) bool {
	_, ok := validAnnotations[name]
	return ok
}

// Extract returns every annotation found in s. A later occurrence of the same
// name overrides an earlier one.
func Extract(s string) (Annotations, error) {
	result := make(Annotations)
	for _, match := range annotationRegex.FindAllStringSubmatch(s, -1) {
		name := match[1]
		if !IsValid(name) {
			return nil, NewUnknownAnnotationError(name)
		}
		result[name] = strings.TrimLeft(match[2], " \t\n")
	}
	return result, nil
}

// Without removes all annotations from s.
func Without(s string) string {
	return annotationRegex.ReplaceAllString(s, "")
}

// NewUnknownAnnotationError creates an unknown annotation error naming the
// offending annotation.
func NewUnknownAnnotationError(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownAnnotation, name)
}

// IsUnknownAnnotationError checks if the error is or wraps ErrUnknownAnnotation
func IsUnknownAnnotationError(err error) bool {
	return errors.Is(err, ErrUnknownAnnotation)
}

// Comment is a raw comment paired with the annotations extracted from it.
type Comment struct {
	Raw         string
	Annotations Annotations
}

// ParseComment extracts annotations from raw once and keeps both.
func ParseComment(raw string) (Comment, error) {
	a, err := Extract(raw)
	if err != nil {
		return Comment{}, err
	}
	return Comment{Raw: raw, Annotations: a}, nil
}

// Hidden reports whether the comment is tagged not-implemented-hide.
func (c Comment) Hidden() bool {
	return c.Annotations.Has(NotImplementedHide)
}

// Text returns the comment with annotations stripped.
func (c Comment) Text() string {
	return Without(c.Raw)
}
