package registry

// ExtensionMetadata describes a pluggable extension as listed in an
// extensions metadata file.
type ExtensionMetadata struct {
	Status          string   `yaml:"status"`
	SecurityPosture string   `yaml:"security_posture"`
	Categories      []string `yaml:"categories"`
	TypeURLs        []string `yaml:"type_urls"`
	// Undocumented extensions resolve by name but are left out of category
	// listings.
	Undocumented bool `yaml:"undocumented"`
}

// Source identifies which registry an extension was found in.
type Source int

const (
	SourcePrimary Source = iota
	SourceContrib
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceContrib:
		return "contrib"
	default:
		return "unknown"
	}
}

// ManifestEntry is the documentation supplement for a security sensitive
// field.
type ManifestEntry struct {
	Note string `yaml:"note"`
	// Example is the untrusted-environment configuration for the field,
	// decoded from YAML.
	Example interface{} `yaml:"example"`
}

// manifestFile is the on-disk manifest layout.
type manifestFile struct {
	Fields map[string]struct {
		EdgeConfig ManifestEntry `yaml:"edge_config"`
	} `yaml:"fields"`
}

// Default descriptions for security posture keys.
var DefaultSecurityPostures = map[string]string{
	"robust_to_untrusted_downstream": "This extension is intended to be robust against untrusted downstream traffic. " +
		"It assumes that the upstream is trusted.",
	"robust_to_untrusted_downstream_and_upstream": "This extension is intended to be robust against both untrusted " +
		"downstream and upstream traffic.",
	"requires_trusted_downstream_and_upstream": "This extension is not hardened and should only be used in " +
		"deployments where both the downstream and upstream are trusted.",
	"unknown": "This extension has an unknown security posture and should only be used in deployments where both " +
		"the downstream and upstream are trusted.",
	"data_plane_agnostic": "This extension does not operate on the data plane and hence is intended to be robust " +
		"against untrusted traffic.",
}

// Default descriptions for extension status keys. Stable extensions carry no
// status text.
var DefaultStatusValues = map[string]string{
	"alpha": "This extension is functional but has not had substantial production burn time, " +
		"use only with this caveat.",
	"wip": "This extension is work-in-progress. Functionality is incomplete and it is not " +
		"intended for production use.",
}
