// Package registry provides the read-only metadata consulted while rendering
// documentation.
//
// # Overview
//
// Four sources are combined:
//
//   - the extensions metadata file (extension name -> status, security
//     posture, categories, type URLs)
//   - the contrib extensions metadata file, same shape, used as a fallback
//   - the protodoc manifest (field qualified name -> note and example
//     configuration for untrusted deployments)
//   - optional overrides for the security posture and status descriptions
//
// Extension category indexes are derived from the metadata. Everything is
// loaded once with Load and never mutated afterwards.
//
// # Usage Example
//
//	reg, err := registry.Load(registry.Paths{
//		Extensions:        "source/extensions/extensions_metadata.yaml",
//		ContribExtensions: "contrib/extensions_metadata.yaml",
//		Manifest:          "docs/protodoc_manifest.yaml",
//	})
//	if err != nil {
//		return err
//	}
//	md, source, ok := reg.Extension("envoy.filters.http.router")
package registry
