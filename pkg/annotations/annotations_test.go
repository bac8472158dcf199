package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Annotations
	}{
		{
			name:     "no annotations",
			input:    "Just a plain comment.\n",
			expected: Annotations{},
		},
		{
			name:     "title",
			input:    "[#protodoc-title: Rate limit]\nMore text.",
			expected: Annotations{DocTitle: "Rate limit"},
		},
		{
			name:     "empty value",
			input:    "Hidden field. [#not-implemented-hide:]",
			expected: Annotations{NotImplementedHide: ""},
		},
		{
			name:  "multiple",
			input: "[#extension: envoy.filters.http.foo]\n[#extension-category: a,b]",
			expected: Annotations{
				Extension:         "envoy.filters.http.foo",
				ExtensionCategory: "a,b",
			},
		},
		{
			name:     "spans lines",
			input:    "[#comment: first\nsecond]",
			expected: Annotations{CommentAnnotation: "first\nsecond"},
		},
		{
			name:     "later wins",
			input:    "[#next-free-field: 3] [#next-free-field: 4]",
			expected: Annotations{NextFreeField: "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtract_UnknownAnnotation(t *testing.T) {
	_, err := Extract("[#protodoc-titel: typo]")
	require.Error(t, err)
	assert.True(t, IsUnknownAnnotationError(err))
	assert.Contains(t, err.Error(), "protodoc-titel")
}

func TestWithout(t *testing.T) {
	assert.Equal(t, "Some text.\nMore.", Without("Some text.\n[#not-implemented-hide:] More."))
	assert.Equal(t, "plain", Without("plain"))
	assert.Equal(t, "a b", Without("a [#comment: x] b"))
}

func TestAnnotations_List(t *testing.T) {
	a := Annotations{ExtensionCategory: " envoy.a , envoy.b,,"}
	assert.Equal(t, []string{"envoy.a", "envoy.b"}, a.List(ExtensionCategory))
	assert.Nil(t, a.List(Extension))
}

func TestParseComment(t *testing.T) {
	c, err := ParseComment("Leading. [#not-implemented-hide:]\n")
	require.NoError(t, err)
	assert.True(t, c.Hidden())
	assert.Equal(t, "Leading. ", c.Text())

	c, err = ParseComment("Visible.\n")
	require.NoError(t, err)
	assert.False(t, c.Hidden())
	assert.Equal(t, "Visible.\n", c.Text())
}
