package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/protodoc/pkg/linter"
	"github.com/platinummonkey/protodoc/pkg/linter/rules"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

const scalarLink = "`string <https://developers.google.com/protocol-buffers/docs/proto#scalar>`_"

func goldenFile() *schema.File {
	name := scalarField("envoy.test.v3.Foo", "name", descriptorpb.FieldDescriptorProto_TYPE_STRING)
	name.Location = comment(" The name.\n")
	name.Rules = &schema.FieldRules{StringMinLen: 1}

	kind := enumField("envoy.test.v3.Foo", "kind", ".envoy.test.v3.Kind")
	kind.Location = comment(" The kind.\n")

	return &schema.File{
		Name:     "envoy/test/v3/foo.proto",
		Package:  "envoy.test.v3",
		Comments: []string{" [#protodoc-title: Test]\n Test protos.\n"},
		Messages: []*schema.Message{{
			Name:     "Foo",
			FullName: "envoy.test.v3.Foo",
			Location: schema.Location{Line: 9, LeadingComments: " A foo.\n"},
			Fields:   []*schema.Field{name, kind},
		}},
		Enums: []*schema.Enum{{
			Name:     "Kind",
			FullName: "envoy.test.v3.Kind",
			Location: schema.Location{Line: 20, LeadingComments: " Kinds.\n"},
			Values: []*schema.EnumValue{
				{Name: "DEFAULT", FullName: "envoy.test.v3.Kind.DEFAULT", Number: 0, Location: comment(" Default.\n")},
				{Name: "OTHER", FullName: "envoy.test.v3.Kind.OTHER", Number: 1},
			},
		}},
	}
}

func TestRenderFile_Golden(t *testing.T) {
	r := newTestRenderer(t, Options{})

	res, err := r.RenderFile(goldenFile())
	require.NoError(t, err)

	want := ".. _envoy_v3_api_file_envoy/test/v3/foo.proto:\n\n" +
		"Test (proto)\n" +
		"============\n\n" +
		"\n\n" +
		"Test protos.\n\n" +
		// Message
		".. _envoy_v3_api_msg_test.v3.Foo:\n\n" +
		"test.v3.Foo\n" +
		"-----------\n\n" +
		":repo:`[test.v3.Foo proto] <api/envoy/test/v3/foo.proto#L10>`\n\n" +
		"A foo.\n\n" +
		".. code-block:: json\n" +
		"  :force:\n\n" +
		"  {\n" +
		"    \"name\": ...,\n" +
		"    \"kind\": ...\n" +
		"  }\n\n" +
		".. _envoy_v3_api_field_test.v3.Foo.name:\n\n" +
		"name\n" +
		"  (" + scalarLink + ", *REQUIRED*) The name.\n\n" +
		"\n" +
		".. _envoy_v3_api_field_test.v3.Foo.kind:\n\n" +
		"kind\n" +
		"  (:ref:`test.v3.Kind <envoy_v3_api_enum_test.v3.Kind>`) The kind.\n\n" +
		"\n" +
		"\n" +
		// Enum
		".. _envoy_v3_api_enum_test.v3.Kind:\n\n" +
		"Enum test.v3.Kind\n" +
		"-----------------\n\n" +
		":repo:`[test.v3.Kind proto] <api/envoy/test/v3/foo.proto#L21>`\n\n" +
		"Kinds.\n\n" +
		".. _envoy_v3_api_enum_value_test.v3.Kind.DEFAULT:\n\n" +
		"DEFAULT\n" +
		"  *(DEFAULT)* \u2063Default.\n\n" +
		"\n" +
		".. _envoy_v3_api_enum_value_test.v3.Kind.OTHER:\n\n" +
		"OTHER\n" +
		"  \u2063\n" +
		"\n"

	if diff := cmp.Diff(want, res.Output); diff != "" {
		t.Errorf("RenderFile() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, res.Orphan)
	assert.False(t, res.Hidden)
	assert.Equal(t, 0, res.Warnings)
}

func TestRenderFile_ReferentialClosure(t *testing.T) {
	r := newTestRenderer(t, Options{})

	res, err := r.RenderFile(goldenFile())
	require.NoError(t, err)

	// Every :ref: target pointing into the API namespace has a matching anchor.
	out := res.Output
	for _, part := range strings.Split(out, ":ref:`")[1:] {
		end := strings.Index(part, ">`")
		require.GreaterOrEqual(t, end, 0)
		target := part[strings.LastIndex(part[:end], "<")+1 : end]
		if strings.HasPrefix(target, "envoy_v3_api_enum_") || strings.HasPrefix(target, "envoy_v3_api_msg_") {
			assert.Contains(t, out, ".. _"+target+":\n", "dangling reference %s", target)
		}
	}
}

func TestRenderFile_OneofSingleRequired(t *testing.T) {
	const msg = "envoy.test.v3.Foo"
	hidden := inOneof(scalarField(msg, "legacy", descriptorpb.FieldDescriptorProto_TYPE_STRING), 0)
	hidden.Location = comment(" [#not-implemented-hide:]\n")

	file := titledFile(&schema.Message{
		Name:     "Foo",
		FullName: msg,
		Fields: []*schema.Field{
			inOneof(scalarField(msg, "a", descriptorpb.FieldDescriptorProto_TYPE_STRING), 0),
			hidden,
		},
		Oneofs: []*schema.Oneof{{Name: "choice", Required: true}},
	})

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)

	assert.Contains(t, res.Output, "a\n  ("+scalarLink+", *REQUIRED*) ")
	assert.NotContains(t, res.Output, "Precisely one of")
	assert.NotContains(t, res.Output, "Only one of")
	assert.NotContains(t, res.Output, "legacy")
}

func TestRenderFile_OneofGroup(t *testing.T) {
	const msg = "envoy.test.v3.Foo"
	b := inOneof(scalarField(msg, "b", descriptorpb.FieldDescriptorProto_TYPE_STRING), 0)
	b.Rules = &schema.FieldRules{StringMinLen: 1}

	for _, required := range []bool{true, false} {
		t.Run(fmt.Sprintf("required=%v", required), func(t *testing.T) {
			file := titledFile(&schema.Message{
				Name:     "Foo",
				FullName: msg,
				Fields: []*schema.Field{
					inOneof(scalarField(msg, "c", descriptorpb.FieldDescriptorProto_TYPE_STRING), 0),
					scalarField(msg, "plain", descriptorpb.FieldDescriptorProto_TYPE_STRING),
					b,
					inOneof(scalarField(msg, "a", descriptorpb.FieldDescriptorProto_TYPE_STRING), 0),
				},
				Oneofs: []*schema.Oneof{{Name: "choice", Required: required, Location: comment(" Pick one.\n")}},
			})

			res, err := newTestRenderer(t, Options{}).RenderFile(file)
			require.NoError(t, err)

			links := ":ref:`c <envoy_v3_api_field_test.v3.Foo.c>`, " +
				":ref:`b <envoy_v3_api_field_test.v3.Foo.b>`, " +
				":ref:`a <envoy_v3_api_field_test.v3.Foo.a>`"
			sentence := "  Only one of " + links + " may be set.\n"
			if required {
				sentence = "  Precisely one of " + links + " must be set.\n"
			}

			assert.NotContains(t, res.Output, "*REQUIRED*")
			// Each member repeats the oneof comment and the group sentence.
			assert.Equal(t, 3, strings.Count(res.Output, sentence))
			assert.Equal(t, 3, strings.Count(res.Output, "  Pick one.\n"))
			assert.Contains(t, res.Output, "b\n  ("+scalarLink+") \n  Pick one.\n\n\n"+sentence)
		})
	}
}

func TestRenderFile_HiddenOneofHidesMembers(t *testing.T) {
	const msg = "envoy.test.v3.Foo"
	file := titledFile(&schema.Message{
		Name:     "Foo",
		FullName: msg,
		Fields: []*schema.Field{
			inOneof(scalarField(msg, "secret_choice", descriptorpb.FieldDescriptorProto_TYPE_STRING), 0),
			scalarField(msg, "visible", descriptorpb.FieldDescriptorProto_TYPE_STRING),
		},
		Oneofs: []*schema.Oneof{{Name: "choice", Location: comment(" [#not-implemented-hide:]\n")}},
	})

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)
	assert.NotContains(t, res.Output, ".. _envoy_v3_api_field_test.v3.Foo.secret_choice:")
	assert.Contains(t, res.Output, ".. _envoy_v3_api_field_test.v3.Foo.visible:")
}

func TestRenderFile_MapEntryNeverStandalone(t *testing.T) {
	const outer = "envoy.test.v3.Foo"
	const inner = outer + ".Inner"
	entry := func(parent string) *schema.Message {
		return &schema.Message{
			Name:     "TagsEntry",
			FullName: parent + ".TagsEntry",
			MapEntry: true,
			Fields: []*schema.Field{
				scalarField(parent+".TagsEntry", "key", descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalarField(parent+".TagsEntry", "value", descriptorpb.FieldDescriptorProto_TYPE_STRING),
			},
		}
	}
	tags := messageField(inner, "tags", "."+inner+".TagsEntry")
	tags.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED

	file := titledFile(&schema.Message{
		Name:     "Foo",
		FullName: outer,
		Fields:   []*schema.Field{messageField(outer, "tags", "."+outer+".TagsEntry")},
		Nested: []*schema.Message{
			entry(outer),
			{
				Name:     "Inner",
				FullName: inner,
				Fields:   []*schema.Field{tags},
				Nested:   []*schema.Message{entry(inner)},
			},
		},
	})

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)

	assert.NotContains(t, res.Output, "_msg_test.v3.Foo.TagsEntry")
	assert.NotContains(t, res.Output, "_msg_test.v3.Foo.Inner.TagsEntry")
	assert.Contains(t, res.Output, ".. _envoy_v3_api_msg_test.v3.Foo.Inner:")
	assert.Contains(t, res.Output, "(**repeated** map<"+scalarLink+", "+scalarLink+">)")
	assert.Contains(t, res.Output, "\"tags\": {...}")
}

func TestRenderFile_Orphan(t *testing.T) {
	r := newTestRenderer(t, Options{})

	t.Run("all empty", func(t *testing.T) {
		file := &schema.File{
			Name:    "envoy/test/v3/service.proto",
			Package: "envoy.test.v3",
			Messages: []*schema.Message{{
				Name:     "Hidden",
				FullName: "envoy.test.v3.Hidden",
				Location: comment(" [#not-implemented-hide:]\n"),
			}},
		}
		res, err := r.RenderFile(file)
		require.NoError(t, err)
		assert.True(t, res.Orphan)
		assert.True(t, strings.HasPrefix(res.Output, ":orphan:\n\n.. _envoy_v3_api_file_envoy/test/v3/service.proto:\n\n"))
		assert.Contains(t, res.Output, "envoy/test/v3/service.proto (proto)\n")
	})

	t.Run("with content", func(t *testing.T) {
		res, err := r.RenderFile(goldenFile())
		require.NoError(t, err)
		assert.False(t, res.Orphan)
		assert.NotContains(t, res.Output, ":orphan:")
	})
}

func TestRenderFile_MissingTitle(t *testing.T) {
	r := newTestRenderer(t, Options{})

	file := goldenFile()
	file.Comments = nil

	_, err := r.RenderFile(file)
	require.Error(t, err)
	assert.True(t, IsMissingTitleError(err))
	assert.Equal(t, "envoy/test/v3/foo.proto", ErrorName(err))

	// Files outside the API namespace fall back to their name.
	file.Name = "contrib/test/foo.proto"
	res, err := r.RenderFile(file)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "contrib/test/foo.proto (proto)\n==============================\n")
}

func TestRenderFile_HiddenFile(t *testing.T) {
	file := goldenFile()
	file.Comments = []string{" [#not-implemented-hide:]\n"}

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)
	assert.True(t, res.Hidden)
	assert.Empty(t, res.Output)
}

func TestRenderFile_WorkInProgress(t *testing.T) {
	r := newTestRenderer(t, Options{})

	tests := []struct {
		name     string
		statuses []schema.FileStatus
		want     int
	}{
		{"none", nil, 0},
		{"udpa", []schema.FileStatus{{Source: schema.StatusSourceUDPA, WorkInProgress: true}}, 1},
		{"xds", []schema.FileStatus{{Source: schema.StatusSourceXDS, WorkInProgress: true}}, 1},
		{"both", []schema.FileStatus{
			{Source: schema.StatusSourceUDPA, WorkInProgress: true},
			{Source: schema.StatusSourceXDS, WorkInProgress: true},
		}, 1},
		{"udpa stable", []schema.FileStatus{
			{Source: schema.StatusSourceUDPA},
			{Source: schema.StatusSourceXDS, WorkInProgress: true},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := goldenFile()
			file.Statuses = tt.statuses
			res, err := r.RenderFile(file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.Count(res.Output, wipWarning))
		})
	}
}

func TestRenderFile_MessageAndFieldWorkInProgress(t *testing.T) {
	file := goldenFile()
	file.Messages[0].WorkInProgress = true
	file.Messages[0].Fields[1].WorkInProgress = true

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "A foo.\n\n"+wipWarning)
	assert.Contains(t, res.Output, "The kind.\n\n  .. warning::\n")
}

func TestRenderFile_Extensions(t *testing.T) {
	r := newTestRenderer(t, Options{})

	t.Run("contrib only", func(t *testing.T) {
		file := goldenFile()
		file.Messages[0].Location.LeadingComments = " A foo.\n [#extension: envoy.filters.http.golang]\n"
		res, err := r.RenderFile(file)
		require.NoError(t, err)
		assert.Contains(t, res.Output, ".. _extension_envoy.filters.http.golang:")
		assert.Contains(t, res.Output, "install_contrib")
		assert.NotContains(t, res.Output, "[#extension")
	})

	t.Run("unknown", func(t *testing.T) {
		file := goldenFile()
		file.Messages[0].Location.LeadingComments = " [#extension: pkg.foo]\n"
		_, err := r.RenderFile(file)
		require.Error(t, err)
		assert.True(t, IsUnknownExtensionError(err))
		assert.Equal(t, "pkg.foo", ErrorName(err))
	})

	t.Run("categories", func(t *testing.T) {
		file := goldenFile()
		file.Messages[0].Fields[0].Location.LeadingComments = " [#extension-category: envoy.filters.http]\n"
		res, err := r.RenderFile(file)
		require.NoError(t, err)
		assert.Contains(t, res.Output, ".. _extension_category_envoy.filters.http:")
	})

	t.Run("unknown category", func(t *testing.T) {
		file := goldenFile()
		file.Messages[0].Fields[0].Location.LeadingComments = " [#extension-category: envoy.filters.http,envoy.nope]\n"
		_, err := r.RenderFile(file)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownExtensionCategory))
	})

	t.Run("file level", func(t *testing.T) {
		file := goldenFile()
		file.Comments = []string{" [#protodoc-title: Router]\n [#extension: envoy.filters.http.router]\n"}
		res, err := r.RenderFile(file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.Output,
			".. _envoy_v3_api_file_envoy/test/v3/foo.proto:\n\nRouter (proto)\n==============\n\n\n\n\n.. _extension_envoy.filters.http.router:\n"))
	})

	t.Run("unknown annotation", func(t *testing.T) {
		file := goldenFile()
		file.Enums[0].Location.LeadingComments = " [#bogus: x]\n"
		_, err := r.RenderFile(file)
		require.Error(t, err)
	})
}

func TestRenderFile_Security(t *testing.T) {
	const msg = "envoy.test.v3.Foo"
	secret := scalarField(msg, "secret", descriptorpb.FieldDescriptorProto_TYPE_UINT32)
	secret.Security = &schema.SecurityOption{ConfigureForUntrustedDownstream: true}
	next := scalarField(msg, "next", descriptorpb.FieldDescriptorProto_TYPE_STRING)

	file := titledFile(&schema.Message{
		Name:     "Foo",
		FullName: msg,
		Fields:   []*schema.Field{secret, next},
	})

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)

	want := "secret\n" +
		"  (`uint32 <https://developers.google.com/protocol-buffers/docs/proto#scalar>`_) \n" +
		"  .. attention::\n" +
		"    This field should be configured in the presence of untrusted *downstreams*.\n\n" +
		"    Keep it small.\n\n" +
		"    Example configuration for untrusted environments:\n\n" +
		"    .. code-block:: yaml\n\n" +
		"      secret:\n" +
		"        value: 1\n" +
		"\n" +
		".. _envoy_v3_api_field_test.v3.Foo.next:\n\n"
	assert.Contains(t, res.Output, want)
}

func TestRenderFile_SecurityMissingManifest(t *testing.T) {
	const msg = "envoy.test.v3.Foo"
	field := scalarField(msg, "undocumented", descriptorpb.FieldDescriptorProto_TYPE_STRING)
	field.Security = &schema.SecurityOption{ConfigureForUntrustedUpstream: true}

	_, err := newTestRenderer(t, Options{}).RenderFile(titledFile(&schema.Message{
		Name:     "Foo",
		FullName: msg,
		Fields:   []*schema.Field{field},
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingManifestEntry))
	assert.Equal(t, "envoy.test.v3.Foo.undocumented", ErrorName(err))
}

func TestRenderFile_SourceLinks(t *testing.T) {
	file := &schema.File{
		Name:     "xds/type/v3/typed_struct.proto",
		Package:  "xds.type.v3",
		Messages: []*schema.Message{{Name: "TypedStruct", FullName: "xds.type.v3.TypedStruct", Location: schema.Location{Line: 41}}},
	}

	res, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)
	assert.Contains(t, res.Output,
		"`[xds.type.v3.TypedStruct proto] <https://github.com/cncf/xds/blob/main/xds/type/v3/typed_struct.proto#L42>`_\n\n")
}

func TestRenderFile_Validator(t *testing.T) {
	failing := validatorFunc(func(name, text string) error {
		return errors.New("1:1: nope (test)")
	})

	t.Run("warning", func(t *testing.T) {
		logger, hook := logtest.NewNullLogger()
		r := newTestRenderer(t, Options{Validator: failing, Logger: logger})

		res, err := r.RenderFile(goldenFile())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Warnings)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "Bad RST (envoy.test.v3.Foo): 1:1: nope (test)", entry.Message)
		assert.Equal(t, "envoy.test.v3.Foo", entry.Data["entity"])
		assert.Equal(t, "envoy/test/v3/foo.proto", entry.Data["file"])
	})

	t.Run("strict", func(t *testing.T) {
		r := newTestRenderer(t, Options{Validator: failing, Strict: true})

		_, err := r.RenderFile(goldenFile())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRST))
		assert.Equal(t, "envoy.test.v3.Foo", ErrorName(err))
	})

	t.Run("linter", func(t *testing.T) {
		engine := linter.NewLintEngine(nil)
		rules.RegisterDefaultRules(engine.Registry())
		logger, hook := logtest.NewNullLogger()
		r := newTestRenderer(t, Options{Validator: engine, Logger: logger})

		file := goldenFile()
		file.Messages[0].Location.LeadingComments = " Use `foo` here.\n"
		res, err := r.RenderFile(file)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Warnings)
		assert.Contains(t, hook.LastEntry().Message, "single-backticks")

		res, err = r.RenderFile(goldenFile())
		require.NoError(t, err)
		assert.Equal(t, 0, res.Warnings)
	})
}

func TestRenderFile_Idempotent(t *testing.T) {
	r := newTestRenderer(t, Options{})

	file := goldenFile()
	file.Messages[0].Location.LeadingComments = " A foo.\n [#extension: envoy.filters.http.router]\n"

	first, err := r.RenderFile(file)
	require.NoError(t, err)
	second, err := r.RenderFile(file)
	require.NoError(t, err)
	fresh, err := newTestRenderer(t, Options{}).RenderFile(file)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(first, fresh))
}

func TestRenderFiles(t *testing.T) {
	r := newTestRenderer(t, Options{})

	var files []*schema.File
	for i := 0; i < 8; i++ {
		f := goldenFile()
		f.Name = fmt.Sprintf("envoy/test/v3/foo%d.proto", i)
		files = append(files, f)
	}

	results, err := r.RenderFiles(context.Background(), files, 3)
	require.NoError(t, err)
	require.Len(t, results, len(files))
	for i, res := range results {
		assert.Equal(t, files[i].Name, res.File)
		single, err := r.RenderFile(files[i])
		require.NoError(t, err)
		assert.Equal(t, single.Output, res.Output)
	}
}

func TestRenderFiles_Error(t *testing.T) {
	r := newTestRenderer(t, Options{})

	bad := goldenFile()
	bad.Name = "envoy/test/v3/bad.proto"
	bad.Comments = nil

	_, err := r.RenderFiles(context.Background(), []*schema.File{goldenFile(), bad}, 0)
	require.Error(t, err)
	assert.True(t, IsMissingTitleError(err))
	assert.Contains(t, err.Error(), "envoy/test/v3/bad.proto")
}

func TestRenderFiles_Canceled(t *testing.T) {
	r := newTestRenderer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderFiles(ctx, []*schema.File{goldenFile()}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "envoy/test/v3/foo.proto.rst", OutputName("envoy/test/v3/foo.proto"))
}
