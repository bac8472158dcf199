package docs

import (
	"strings"
)

// Config controls naming and linking of rendered documents.
type Config struct {
	// LabelPrefix starts every cross reference label, e.g. envoy_v3_api.
	LabelPrefix string
	// StripPrefixes are removed from qualified names before they are used in
	// labels and link text. The first match wins.
	StripPrefixes []string
	// LinkPrefixes mark type names that are documented by this tool and get
	// internal cross references.
	LinkPrefixes []string
	// TitleRequiredPrefix selects files that must carry a title annotation
	// when they have content.
	TitleRequiredPrefix string
	// RepoPathPrefix is prepended to file names in :repo: source links.
	RepoPathPrefix string
	// ExternalSourcePrefix selects types whose source lives in another
	// repository, linked through ExternalSourceURL.
	ExternalSourcePrefix string
	ExternalSourceURL    string
}

// DefaultConfig returns the naming used by the Envoy API docs.
func DefaultConfig() Config {
	return Config{
		LabelPrefix:          "envoy_v3_api",
		StripPrefixes:        []string{".envoy.api.v2.", ".envoy."},
		LinkPrefixes:         []string{".envoy.api.v2.", ".envoy.", ".xds."},
		TitleRequiredPrefix:  "envoy",
		RepoPathPrefix:       "api/",
		ExternalSourcePrefix: "xds.",
		ExternalSourceURL:    "https://github.com/cncf/xds/blob/main/",
	}
}

// Labeler generates cross reference labels. The same qualified name always
// yields the same label, so a link built from a field's type name matches the
// anchor emitted for the type itself.
type Labeler struct {
	prefix        string
	stripPrefixes []string
}

// NewLabeler creates a labeler from config.
func NewLabeler(cfg Config) Labeler {
	return Labeler{prefix: cfg.LabelPrefix, stripPrefixes: cfg.StripPrefixes}
}

// Normalize strips the configured namespace prefix from a fully qualified
// type name. A leading dot is optional.
func (l Labeler) Normalize(name string) string {
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	for _, prefix := range l.stripPrefixes {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name[1:]
}

func (l Labeler) File(name string) string {
	return l.prefix + "_file_" + name
}

func (l Labeler) Message(name string) string {
	return l.prefix + "_msg_" + l.Normalize(name)
}

func (l Labeler) Enum(name string) string {
	return l.prefix + "_enum_" + l.Normalize(name)
}

func (l Labeler) Field(name string) string {
	return l.prefix + "_field_" + l.Normalize(name)
}

func (l Labeler) EnumValue(name string) string {
	return l.prefix + "_enum_value_" + l.Normalize(name)
}
