package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Paths locates the registry files on disk. Empty paths are skipped.
type Paths struct {
	Extensions        string
	ContribExtensions string
	Manifest          string
	SecurityPostures  string
	StatusValues      string
}

// Load reads every configured registry file and indexes the result.
func Load(paths Paths) (*Registry, error) {
	var data Data
	var err error

	if data.Extensions, err = LoadExtensions(paths.Extensions); err != nil {
		return nil, err
	}
	if data.ContribExtensions, err = LoadExtensions(paths.ContribExtensions); err != nil {
		return nil, err
	}
	if data.Manifest, err = LoadManifest(paths.Manifest); err != nil {
		return nil, err
	}
	if data.SecurityPostures, err = loadTexts(paths.SecurityPostures); err != nil {
		return nil, err
	}
	if data.StatusValues, err = loadTexts(paths.StatusValues); err != nil {
		return nil, err
	}

	return New(data)
}

// LoadExtensions parses an extensions metadata file keyed by extension name.
func LoadExtensions(path string) (map[string]ExtensionMetadata, error) {
	extensions := make(map[string]ExtensionMetadata)
	if err := loadYAML(path, &extensions); err != nil {
		return nil, err
	}
	return extensions, nil
}

// LoadManifest parses a manifest file and returns the edge configuration of
// every listed field.
func LoadManifest(path string) (map[string]ManifestEntry, error) {
	var mf manifestFile
	if err := loadYAML(path, &mf); err != nil {
		return nil, err
	}

	manifest := make(map[string]ManifestEntry, len(mf.Fields))
	for name, field := range mf.Fields {
		manifest[name] = field.EdgeConfig
	}
	return manifest, nil
}

func loadTexts(path string) (map[string]string, error) {
	texts := make(map[string]string)
	if err := loadYAML(path, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

func loadYAML(path string, out interface{}) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read registry file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return NewInvalidRegistryFileError(path, err)
	}
	return nil
}
