package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/protodoc/pkg/registry"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

type validatorFunc func(name, text string) error

func (f validatorFunc) Validate(name, text string) error { return f(name, text) }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.Data{
		Extensions: map[string]registry.ExtensionMetadata{
			"envoy.filters.http.router": {
				Status:          "stable",
				SecurityPosture: "robust_to_untrusted_downstream",
				Categories:      []string{"envoy.filters.http"},
				TypeURLs:        []string{"envoy.extensions.filters.http.router.v3.Router"},
			},
			"envoy.filters.http.bad": {
				SecurityPosture: "made_up",
				Categories:      []string{"envoy.bad"},
			},
		},
		ContribExtensions: map[string]registry.ExtensionMetadata{
			"envoy.filters.http.golang": {
				Status:          "alpha",
				SecurityPosture: "requires_trusted_downstream_and_upstream",
				Categories:      []string{"envoy.filters.http"},
			},
		},
		Manifest: map[string]registry.ManifestEntry{
			"envoy.test.v3.Foo.secret": {
				Note:    "Keep it small.\n",
				Example: map[string]interface{}{"value": 1},
			},
		},
	})
	require.NoError(t, err)
	return reg
}

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	if opts.Config.LabelPrefix == "" {
		opts.Config = DefaultConfig()
	}
	if opts.Registry == nil {
		opts.Registry = testRegistry(t)
	}
	r, err := NewRenderer(opts)
	require.NoError(t, err)
	return r
}

func comment(text string) schema.Location {
	return schema.Location{LeadingComments: text}
}

func scalarField(msg, name string, typ descriptorpb.FieldDescriptorProto_Type) *schema.Field {
	return &schema.Field{
		Name:     name,
		FullName: msg + "." + name,
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL,
		Type:     typ,
	}
}

func messageField(msg, name, typeName string) *schema.Field {
	f := scalarField(msg, name, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = typeName
	return f
}

func enumField(msg, name, typeName string) *schema.Field {
	f := scalarField(msg, name, descriptorpb.FieldDescriptorProto_TYPE_ENUM)
	f.TypeName = typeName
	return f
}

func inOneof(f *schema.Field, index int32) *schema.Field {
	f.OneofIndex = &index
	return f
}

func titledFile(msgs ...*schema.Message) *schema.File {
	return &schema.File{
		Name:     "envoy/test/v3/foo.proto",
		Package:  "envoy.test.v3",
		Comments: []string{" [#protodoc-title: Test]\n"},
		Messages: msgs,
	}
}
