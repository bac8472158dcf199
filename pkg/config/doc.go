// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// defaults matching the Envoy API documentation build. Command line flags and
// protoc plugin parameters override individual settings afterwards.
//
// # Configuration Structure
//
// Render settings:
//
//	PROTODOC_LABEL_PREFIX="envoy_v3_api"
//	PROTODOC_STRIP_PREFIXES=".envoy.api.v2.,.envoy."
//	PROTODOC_LINK_PREFIXES=".envoy.api.v2.,.envoy.,.xds."
//	PROTODOC_TITLE_REQUIRED_PREFIX="envoy"
//	PROTODOC_REPO_PATH_PREFIX="api/"
//	PROTODOC_EXTERNAL_SOURCE_PREFIX="xds."
//	PROTODOC_EXTERNAL_SOURCE_URL="https://github.com/cncf/xds/blob/main/"
//	PROTODOC_PARALLELISM="8"
//	PROTODOC_STRICT_RST="false"
//	PROTODOC_CACHE_SIZE="256"
//	PROTODOC_LINT_CONFIG="protodoc-lint.yaml"
//
// Registry settings:
//
//	PROTODOC_EXTENSIONS_METADATA="source/extensions/extensions_metadata.yaml"
//	PROTODOC_CONTRIB_EXTENSIONS_METADATA="contrib/extensions_metadata.yaml"
//	PROTODOC_MANIFEST="docs/protodoc_manifest.yaml"
//	PROTODOC_SECURITY_POSTURES="docs/security_postures.yaml"
//	PROTODOC_STATUS_VALUES="docs/status_values.yaml"
//
// Output settings:
//
//	PROTODOC_OUTPUT_DIR="generated/rst"
//	PROTODOC_IMPORT_PATHS="api,third_party"
//	PROTODOC_WATCH_DEBOUNCE="500ms"
//
// Observability settings:
//
//	PROTODOC_LOG_LEVEL="info"  # debug, info, warn, error
//	PROTODOC_LOG_FORMAT="text" # text, json
//	PROTODOC_METRICS_TEXTFILE="/var/lib/node_exporter/protodoc.prom"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	renderer, err := docs.NewRenderer(docs.Options{Config: cfg.Docs()})
//
// # Related Packages
//
//   - pkg/docs: Uses render configuration
//   - pkg/registry: Uses registry paths
//   - pkg/observability: Uses observability configuration
package config
