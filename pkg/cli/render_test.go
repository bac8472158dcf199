package cli

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protodoc/pkg/config"
)

const widgetProto = `// [#protodoc-title: Widgets]

syntax = "proto3";

package envoy.widgets.v3;

// A widget.
message Widget {
  // Name of the widget.
  string name = 1;
}
`

const toolProto = `// [#protodoc-title: Tools]

syntax = "proto3";

package envoy.tools.v3;

import "envoy/widgets/v3/widget.proto";

// A tool.
message Tool {
  // The widget this tool turns.
  widgets.v3.Widget widget = 1;
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T, importPaths ...string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Output.Dir = t.TempDir()
	cfg.Output.ImportPaths = importPaths
	return cfg
}

func TestFindProtoFiles(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, a, "envoy/widgets/v3/widget.proto", widgetProto)
	writeFile(t, a, "envoy/widgets/v3/README.md", "docs")
	writeFile(t, b, "envoy/tools/v3/tool.proto", toolProto)
	writeFile(t, b, "envoy/widgets/v3/widget.proto", widgetProto)

	names, err := findProtoFiles([]string{a, b}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"envoy/tools/v3/tool.proto", "envoy/widgets/v3/widget.proto"}, names)

	names, err = findProtoFiles([]string{a, b}, []string{"./envoy/tools/**/*.proto"})
	require.NoError(t, err)
	assert.Equal(t, []string{"envoy/tools/v3/tool.proto"}, names)

	_, err = findProtoFiles([]string{a}, []string{"envoy/[.proto"})
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestMatchesPatterns(t *testing.T) {
	root := t.TempDir()

	assert.True(t, matchesPatterns([]string{root}, nil, filepath.Join(root, "envoy", "a.proto")))
	assert.True(t, matchesPatterns([]string{root}, []string{"envoy/**/*.proto"}, filepath.Join(root, "envoy", "x", "a.proto")))
	assert.False(t, matchesPatterns([]string{root}, []string{"envoy/**/*.proto"}, filepath.Join(root, "other", "a.proto")))
	assert.False(t, matchesPatterns([]string{root}, nil, filepath.Join(t.TempDir(), "a.proto")))
}

func TestRunRender(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "envoy/widgets/v3/widget.proto", widgetProto)
	writeFile(t, src, "envoy/tools/v3/tool.proto", toolProto)

	cfg := testConfig(t, src)
	logger, _ := logtest.NewNullLogger()

	paths, err := runRender(context.Background(), cfg, logger, nil)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "envoy", "tools", "v3", "tool.proto.rst"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tools (proto)")
	assert.Contains(t, string(data), ":ref:`widgets.v3.Widget <envoy_v3_api_msg_widgets.v3.Widget>`")

	data, err = os.ReadFile(filepath.Join(cfg.Output.Dir, "envoy", "widgets", "v3", "widget.proto.rst"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".. _envoy_v3_api_msg_widgets.v3.Widget:")
}

func TestRunRender_NoMatches(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	logger, _ := logtest.NewNullLogger()

	_, err := runRender(context.Background(), cfg, logger, []string{"envoy/**/*.proto"})
	assert.EqualError(t, err, "no proto files matched envoy/**/*.proto")
}

func TestRunRender_CompileError(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "envoy/broken.proto", "syntax = \"proto3\";\nmessage {\n")

	cfg := testConfig(t, src)
	logger, _ := logtest.NewNullLogger()

	_, err := runRender(context.Background(), cfg, logger, nil)
	assert.ErrorContains(t, err, "protocompile failed")
}

func TestLoadConfig_Flags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	registerSettingFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--output-dir", "out",
		"--import-paths", "api,vendor",
		"--strict-rst", "true",
		"--label-prefix", "acme_api",
	}))

	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, []string{"api", "vendor"}, cfg.Output.ImportPaths)
	assert.True(t, cfg.Render.StrictRST)
	assert.Equal(t, "acme_api", cfg.Render.LabelPrefix)
}

func TestLoadConfig_BadFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	registerSettingFlags(fs)
	require.NoError(t, fs.Parse([]string{"--parallelism", "lots"}))

	_, err := loadConfig(fs)
	assert.ErrorContains(t, err, "--parallelism")

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	registerSettingFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-format", "xml"}))

	_, err = loadConfig(fs)
	assert.ErrorContains(t, err, "invalid log format")
}

func TestRenderCommand(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "envoy/widgets/v3/widget.proto", widgetProto)
	out := t.TempDir()

	cmd := newRenderCommand()

	var err error
	output := captureStdout(t, func() {
		err = cmd.Run([]string{"--import-paths", src, "--output-dir", out, "--log-level", "error", "envoy/**/*.proto"})
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Rendered 1 documents to "+out)
	assert.FileExists(t, filepath.Join(out, "envoy", "widgets", "v3", "widget.proto.rst"))
}
