package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protodoc/pkg/config"
	"github.com/platinummonkey/protodoc/pkg/observability"
)

// settingFlags are flags that override a configuration setting of the same
// name, with dashes for underscores
var settingFlags = []struct {
	name  string
	usage string
}{
	{"output-dir", "Directory to write .rst documents to"},
	{"import-paths", "Comma separated proto import paths"},
	{"extensions-metadata", "Extensions metadata YAML"},
	{"contrib-extensions-metadata", "Contrib extensions metadata YAML"},
	{"manifest", "Protodoc manifest YAML"},
	{"security-postures", "Security posture descriptions YAML"},
	{"status-values", "Extension status descriptions YAML"},
	{"label-prefix", "Cross reference label prefix"},
	{"strip-prefixes", "Comma separated namespace prefixes stripped from labels"},
	{"link-prefixes", "Comma separated namespace prefixes that get internal links"},
	{"title-required-prefix", "File name prefix of files that must carry a title"},
	{"parallelism", "Maximum number of files rendered at once"},
	{"strict-rst", "Fail instead of warn when a rendered block is not valid RST"},
	{"lint-config", "RST lint configuration (protodoc-lint.yaml)"},
	{"log-level", "Log level: debug, info, warn, error"},
	{"log-format", "Log format: text, json"},
	{"metrics-textfile", "Write Prometheus metrics to this file after each render"},
	{"watch-debounce", "Quiet period before re-rendering after a change (watch only)"},
}

// registerSettingFlags adds every setting flag to fs. Flags default to
// empty so only those given on the command line override the environment.
func registerSettingFlags(fs *flag.FlagSet) {
	for _, f := range settingFlags {
		fs.String(f.name, "", f.usage)
	}
}

// loadConfig loads the environment configuration and applies every setting
// flag that was set
func loadConfig(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if setErr != nil {
			return
		}
		if err := cfg.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String()); err != nil {
			setErr = fmt.Errorf("--%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return nil, setErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRun creates the logger for a command run and a context carrying it
// with a fresh run ID
func newRun(cfg *config.Config) (context.Context, logrus.FieldLogger, error) {
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	ctx := observability.WithRunID(context.Background(), runID)
	ctx = observability.WithLogger(ctx, logger)
	return ctx, observability.FromContext(ctx), nil
}
