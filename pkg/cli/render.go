package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protodoc/pkg/config"
	"github.com/platinummonkey/protodoc/pkg/orchestrator"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

const defaultProtoPattern = "**/*.proto"

// newRenderCommand creates the render command
func newRenderCommand() *Command {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	registerSettingFlags(fs)

	return &Command{
		Name:        "render",
		Description: "Render proto files to reStructuredText",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			cfg, err := loadConfig(fs)
			if err != nil {
				return err
			}
			ctx, logger, err := newRun(cfg)
			if err != nil {
				return err
			}

			paths, err := runRender(ctx, cfg, logger, fs.Args())
			if err != nil {
				return err
			}

			fmt.Printf("Rendered %d documents to %s\n", len(paths), cfg.Output.Dir)
			return nil
		},
	}
}

// runRender renders every proto file under the import paths matching
// patterns and writes the documents to the output directory
func runRender(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, patterns []string) ([]string, error) {
	o, err := orchestrator.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return renderOnce(ctx, o, cfg, patterns)
}

func renderOnce(ctx context.Context, o *orchestrator.Orchestrator, cfg *config.Config, patterns []string) ([]string, error) {
	names, err := findProtoFiles(cfg.Output.ImportPaths, patterns)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no proto files matched %s", strings.Join(defaultPatterns(patterns), " "))
	}

	files, err := schema.Compile(ctx, schema.CompileOptions{ImportPaths: cfg.Output.ImportPaths}, names...)
	if err != nil {
		return nil, err
	}

	results, err := o.Render(ctx, files)
	if err != nil {
		return nil, err
	}
	return o.Write(cfg.Output.Dir, results)
}

func defaultPatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return []string{defaultProtoPattern}
	}
	return patterns
}

// findProtoFiles expands patterns under every import path and returns the
// matching proto files by import name, sorted and without duplicates
func findProtoFiles(roots, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range defaultPatterns(patterns) {
		pattern = path.Clean(filepath.ToSlash(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}

		for _, root := range roots {
			matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("failed to expand %s in %s: %w", pattern, root, err)
			}
			for _, match := range matches {
				if path.Ext(match) == ".proto" {
					seen[match] = struct{}{}
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// matchesPatterns reports whether the file at name, relative to one of the
// import paths, matches any pattern
func matchesPatterns(roots, patterns []string, name string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, name)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range defaultPatterns(patterns) {
			if ok, _ := doublestar.Match(path.Clean(filepath.ToSlash(pattern)), rel); ok {
				return true
			}
		}
	}
	return false
}
