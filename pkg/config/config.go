package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protodoc/pkg/docs"
	"github.com/platinummonkey/protodoc/pkg/registry"
)

// Config holds all application configuration
type Config struct {
	// Render configuration
	Render RenderConfig

	// Registry file locations
	Registry registry.Paths

	// Output configuration
	Output OutputConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// RenderConfig holds naming, linking and rendering policy
type RenderConfig struct {
	LabelPrefix          string
	StripPrefixes        []string
	LinkPrefixes         []string
	TitleRequiredPrefix  string
	RepoPathPrefix       string
	ExternalSourcePrefix string
	ExternalSourceURL    string

	Parallelism int
	StrictRST   bool
	CacheSize   int

	// LintConfig is an optional protodoc-lint.yaml for the RST validator
	LintConfig string
}

// OutputConfig holds where sources are read from and documents written to
type OutputConfig struct {
	Dir         string
	ImportPaths []string

	// WatchDebounce delays re-rendering after a burst of file events
	WatchDebounce time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string

	// MetricsTextfile is written in the Prometheus text format after each
	// render when set
	MetricsTextfile string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Render:        loadRenderConfig(),
		Registry:      loadRegistryPaths(),
		Output:        loadOutputConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadRenderConfig loads render configuration from environment
func loadRenderConfig() RenderConfig {
	defaults := docs.DefaultConfig()

	return RenderConfig{
		LabelPrefix:          getEnv("PROTODOC_LABEL_PREFIX", defaults.LabelPrefix),
		StripPrefixes:        getEnvList("PROTODOC_STRIP_PREFIXES", defaults.StripPrefixes),
		LinkPrefixes:         getEnvList("PROTODOC_LINK_PREFIXES", defaults.LinkPrefixes),
		TitleRequiredPrefix:  getEnv("PROTODOC_TITLE_REQUIRED_PREFIX", defaults.TitleRequiredPrefix),
		RepoPathPrefix:       getEnv("PROTODOC_REPO_PATH_PREFIX", defaults.RepoPathPrefix),
		ExternalSourcePrefix: getEnv("PROTODOC_EXTERNAL_SOURCE_PREFIX", defaults.ExternalSourcePrefix),
		ExternalSourceURL:    getEnv("PROTODOC_EXTERNAL_SOURCE_URL", defaults.ExternalSourceURL),
		Parallelism:          getEnvInt("PROTODOC_PARALLELISM", runtime.NumCPU()),
		StrictRST:            getEnvBool("PROTODOC_STRICT_RST", false),
		CacheSize:            getEnvInt("PROTODOC_CACHE_SIZE", 256),
		LintConfig:           getEnv("PROTODOC_LINT_CONFIG", ""),
	}
}

// loadRegistryPaths loads registry file locations from environment
func loadRegistryPaths() registry.Paths {
	return registry.Paths{
		Extensions:        getEnv("PROTODOC_EXTENSIONS_METADATA", ""),
		ContribExtensions: getEnv("PROTODOC_CONTRIB_EXTENSIONS_METADATA", ""),
		Manifest:          getEnv("PROTODOC_MANIFEST", ""),
		SecurityPostures:  getEnv("PROTODOC_SECURITY_POSTURES", ""),
		StatusValues:      getEnv("PROTODOC_STATUS_VALUES", ""),
	}
}

// loadOutputConfig loads output configuration from environment
func loadOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:           getEnv("PROTODOC_OUTPUT_DIR", "."),
		ImportPaths:   getEnvList("PROTODOC_IMPORT_PATHS", []string{"."}),
		WatchDebounce: getEnvDuration("PROTODOC_WATCH_DEBOUNCE", 500*time.Millisecond),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:        getEnv("PROTODOC_LOG_LEVEL", "info"),
		LogFormat:       getEnv("PROTODOC_LOG_FORMAT", "text"),
		MetricsTextfile: getEnv("PROTODOC_METRICS_TEXTFILE", ""),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Render.LabelPrefix == "" {
		return fmt.Errorf("label prefix is required")
	}
	if c.Render.TitleRequiredPrefix == "" {
		return fmt.Errorf("title required prefix is required")
	}
	for _, prefix := range append(append([]string{}, c.Render.StripPrefixes...), c.Render.LinkPrefixes...) {
		if !strings.HasPrefix(prefix, ".") || !strings.HasSuffix(prefix, ".") {
			return fmt.Errorf("invalid namespace prefix %q (must start and end with '.')", prefix)
		}
	}
	if c.Render.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Render.Parallelism)
	}
	if c.Render.CacheSize < 1 {
		return fmt.Errorf("cache size must be at least 1, got %d", c.Render.CacheSize)
	}
	if c.Render.ExternalSourcePrefix != "" && c.Render.ExternalSourceURL == "" {
		return fmt.Errorf("external source URL is required when an external source prefix is set")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Output.WatchDebounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	if _, err := logrus.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Observability.LogLevel)
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	return nil
}

// Docs returns the naming and linking configuration for the renderer
func (c *Config) Docs() docs.Config {
	return docs.Config{
		LabelPrefix:          c.Render.LabelPrefix,
		StripPrefixes:        c.Render.StripPrefixes,
		LinkPrefixes:         c.Render.LinkPrefixes,
		TitleRequiredPrefix:  c.Render.TitleRequiredPrefix,
		RepoPathPrefix:       c.Render.RepoPathPrefix,
		ExternalSourcePrefix: c.Render.ExternalSourcePrefix,
		ExternalSourceURL:    c.Render.ExternalSourceURL,
	}
}

// Set overrides a single setting by key. Keys match the environment
// variable names without the PROTODOC_ prefix, lower-cased, e.g.
// "label_prefix" or "strict_rst". Used for protoc plugin parameters.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(key)
	switch key {
	case "label_prefix":
		c.Render.LabelPrefix = value
	case "strip_prefixes":
		c.Render.StripPrefixes = splitList(value)
	case "link_prefixes":
		c.Render.LinkPrefixes = splitList(value)
	case "title_required_prefix":
		c.Render.TitleRequiredPrefix = value
	case "repo_path_prefix":
		c.Render.RepoPathPrefix = value
	case "external_source_prefix":
		c.Render.ExternalSourcePrefix = value
	case "external_source_url":
		c.Render.ExternalSourceURL = value
	case "parallelism", "cache_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if key == "parallelism" {
			c.Render.Parallelism = n
		} else {
			c.Render.CacheSize = n
		}
	case "strict_rst":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		c.Render.StrictRST = b
	case "lint_config":
		c.Render.LintConfig = value
	case "extensions_metadata":
		c.Registry.Extensions = value
	case "contrib_extensions_metadata":
		c.Registry.ContribExtensions = value
	case "manifest":
		c.Registry.Manifest = value
	case "security_postures":
		c.Registry.SecurityPostures = value
	case "status_values":
		c.Registry.StatusValues = value
	case "output_dir":
		c.Output.Dir = value
	case "import_paths":
		c.Output.ImportPaths = splitList(value)
	case "watch_debounce":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		c.Output.WatchDebounce = d
	case "log_level":
		c.Observability.LogLevel = value
	case "log_format":
		c.Observability.LogFormat = value
	case "metrics_textfile":
		c.Observability.MetricsTextfile = value
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitList(value)
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
