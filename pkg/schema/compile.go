package schema

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/linker"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// CompileOptions controls how proto sources are located.
type CompileOptions struct {
	// ImportPaths are searched, in order, for the files being compiled and
	// their imports.
	ImportPaths []string
	// Sources, when set, supplies file contents by name instead of the file
	// system. Used for in-memory compilation.
	Sources map[string]string
}

// Compile parses and links the named proto files with source info retained
// and converts them into schema files. The well-known types are always
// importable.
func Compile(ctx context.Context, opts CompileOptions, names ...string) ([]*File, error) {
	resolver := &protocompile.SourceResolver{
		ImportPaths: opts.ImportPaths,
	}
	if opts.Sources != nil {
		resolver.Accessor = protocompile.SourceAccessorFromMap(opts.Sources)
	}

	compiler := protocompile.Compiler{
		Resolver:       protocompile.WithStandardImports(resolver),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}

	result, err := compiler.Compile(ctx, names...)
	if err != nil {
		return nil, fmt.Errorf("protocompile failed: %w", err)
	}
	return FromDescriptors(linkedDescriptors(result)...)
}

func linkedDescriptors(files linker.Files) []protoreflect.FileDescriptor {
	fds := make([]protoreflect.FileDescriptor, 0, len(files))
	for _, f := range files {
		fds = append(fds, f)
	}
	return fds
}
