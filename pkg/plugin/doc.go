// Package plugin implements protoc-gen-protodoc, the protoc plugin front end.
//
// protoc sends a CodeGeneratorRequest on stdin holding every file descriptor
// with source info. Each file to generate is rendered to <file>.rst and
// returned in the CodeGeneratorResponse:
//
//	protoc --plugin=protoc-gen-protodoc \
//		--protodoc_out=generated/rst \
//		--protodoc_opt=manifest=docs/protodoc_manifest.yaml \
//		envoy/config/core/v3/base.proto
//
// Settings are read from PROTODOC_* environment variables (see pkg/config)
// and overridden by the plugin parameter.
package plugin
