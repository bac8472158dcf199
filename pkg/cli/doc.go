// Package cli provides the protodoc command-line interface.
//
// # Overview
//
// This package implements the `protodoc` CLI tool for rendering protobuf API
// documentation as reStructuredText outside of a protoc invocation, keeping
// it up to date while editing, and checking generated documents.
//
// # Commands
//
// render: Compile proto files and write one .rst document per file
//
//	protodoc render \
//		--import-paths api,third_party \
//		--output-dir generated/rst \
//		--extensions-metadata source/extensions/extensions_metadata.yaml \
//		--manifest docs/protodoc_manifest.yaml \
//		'envoy/**/*.proto'
//
// Patterns are doublestar globs matched against every import path and
// default to all proto files.
//
// watch: Render, then re-render whenever a matching proto file changes
//
//	protodoc watch --import-paths api --output-dir generated/rst --watch-debounce 1s
//
// check-rst: Run the RST rules over existing documents
//
//	protodoc check-rst --dir generated/rst --format github --fail-on-warning
//
// # Configuration
//
// Every render and watch flag overrides the PROTODOC_* environment variable
// of the same name (see pkg/config):
//
//	export PROTODOC_MANIFEST="docs/protodoc_manifest.yaml"
//	# Or use --manifest
//
// Each run logs with a run_id field so concurrent CI jobs can be told apart.
//
// # Related Packages
//
//   - pkg/orchestrator: Registry loading, rendering and writing
//   - pkg/schema: Compiles proto sources
//   - pkg/linter: RST rules used by check-rst
package cli
