package orchestrator

import "errors"

var (
	// ErrNoProtoFiles is returned when there is nothing to render
	ErrNoProtoFiles = errors.New("no proto files provided")

	// ErrWriteFailed is returned when a rendered document cannot be written
	ErrWriteFailed = errors.New("failed to write document")
)
