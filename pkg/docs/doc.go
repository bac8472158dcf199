// Package docs renders protobuf schema trees as cross-referenced
// reStructuredText.
//
// # Overview
//
// One document is produced per proto file. Every message, enum, field and
// enum value gets an anchor whose label is derived from its qualified name,
// and every reference to an API type links to that label, so documents can
// link to each other without a shared index.
//
// # Document Structure
//
// Rendered Elements:
//   - File header with title, extension block and work-in-progress banner
//   - Messages with a JSON shape preview and one definition per field
//   - Oneof constraints ("Precisely one of ..." / "Only one of ...")
//   - Security guidance for fields marked with udpa.annotations.security
//   - Extension and extension category blocks from [#extension:] and
//     [#extension-category:] annotations
//   - Enums with their values, the zero value marked as default
//
// Map entry messages, hidden ([#not-implemented-hide:]) elements and
// services are never rendered. A file without rendered content is marked
// :orphan:.
//
// # Usage Example
//
//	reg, err := registry.Load(paths)
//	if err != nil {
//		return err
//	}
//	renderer, err := docs.NewRenderer(docs.Options{
//		Config:   docs.DefaultConfig(),
//		Registry: reg,
//		Logger:   logger,
//	})
//	if err != nil {
//		return err
//	}
//	results, err := renderer.RenderFiles(ctx, files, 8)
//
// # Errors
//
// Schema and registry defects abort rendering with an *Error wrapping one of
// the sentinel errors (ErrUnknownFieldType, ErrUnknownExtension, ...). RST
// validation failures are logged unless Options.Strict is set.
//
// # Related Packages
//
//   - pkg/schema: Schema tree loaded from descriptors
//   - pkg/registry: Extension metadata and field manifest
//   - pkg/linter: RST validation
package docs
