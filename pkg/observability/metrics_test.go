package observability

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protodoc/pkg/docs"
)

func TestMetrics_RecordResults(t *testing.T) {
	m := NewMetrics(nil)

	m.RecordResults([]docs.Result{
		{File: "a.proto", Warnings: 2},
		{File: "b.proto", Orphan: true},
		{File: "c.proto", Hidden: true},
		{File: "d.proto"},
	}, 250*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("orphan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("hidden")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationWarnings))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RenderDuration))
}

func TestMetrics_RecordError(t *testing.T) {
	m := NewMetrics(nil)

	m.RecordError(fmt.Errorf("a.proto: %w", &docs.Error{Kind: docs.ErrMissingTitle, Name: "a.proto"}))
	m.RecordError(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrorsTotal.WithLabelValues("missing_title")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrorsTotal.WithLabelValues("other")))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		kind error
		want string
	}{
		{docs.ErrUnknownFieldType, "unknown_field_type"},
		{docs.ErrUnknownExtension, "unknown_extension"},
		{docs.ErrUnknownExtensionCategory, "unknown_extension_category"},
		{docs.ErrUnknownSecurityPosture, "unknown_security_posture"},
		{docs.ErrMissingManifestEntry, "missing_manifest_entry"},
		{docs.ErrMissingTitle, "missing_title"},
		{docs.ErrInvalidRST, "invalid_rst"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(&docs.Error{Kind: tt.kind, Name: "x"}))
		})
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics(nil)
	m.RecordExtensions(3, 1)

	path := filepath.Join(t.TempDir(), "protodoc.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `protodoc_extensions_loaded{source="primary"} 3`)
	assert.Contains(t, string(data), `protodoc_extensions_loaded{source="contrib"} 1`)
}
