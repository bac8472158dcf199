// Package schema holds the immutable proto tree consumed by the documentation
// renderer and the loaders that build it.
//
// Files are compiled with protocompile (CLI mode) or taken from a protoc
// CodeGeneratorRequest (plugin mode). Either way the descriptors are walked
// once: comments are attached from SourceCodeInfo and the custom options the
// renderer cares about (validation rules, security and status annotations)
// are decoded into plain Go fields, so nothing downstream needs protoreflect.
//
// # Usage Example
//
//	files, err := schema.Compile(ctx, schema.CompileOptions{
//		ImportPaths: []string{"api"},
//	}, "envoy/config/core/v3/base.proto")
package schema
