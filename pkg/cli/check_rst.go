package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/platinummonkey/protodoc/pkg/linter"
	"github.com/platinummonkey/protodoc/pkg/linter/rules"
)

const defaultRSTPattern = "**/*.rst"

// newCheckRSTCommand creates the check-rst command
func newCheckRSTCommand() *Command {
	fs := flag.NewFlagSet("check-rst", flag.ExitOnError)

	var (
		dir           = fs.String("dir", ".", "Directory containing .rst files")
		configFile    = fs.String("config", "", "Path to lint config file (protodoc-lint.yaml)")
		format        = fs.String("format", "text", "Output format: text, json, github")
		failOnError   = fs.Bool("fail-on-error", true, "Exit with error code on lint errors")
		failOnWarning = fs.Bool("fail-on-warning", false, "Exit with error code on lint warnings")
		rulesOnly     = fs.Bool("rules", false, "List available rules and exit")
	)

	return &Command{
		Name:        "check-rst",
		Description: "Check reStructuredText documents for markup problems",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			return runCheckRST(*dir, *configFile, *format, fs.Args(), *failOnError, *failOnWarning, *rulesOnly)
		},
	}
}

func runCheckRST(dir, configFile, format string, patterns []string, failOnError, failOnWarning, rulesOnly bool) error {
	// Load configuration
	var config *linter.Config
	var err error
	if configFile != "" {
		config, err = linter.LoadConfig(configFile)
	} else {
		config, err = linter.LoadConfigFromDir(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := linter.NewLintEngine(config)
	rules.RegisterDefaultRules(engine.Registry())

	if rulesOnly {
		return checkRSTListRules(engine)
	}

	files, err := findRSTFiles(dir, patterns)
	if err != nil {
		return fmt.Errorf("failed to find documents: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("No documents found in %s\n", dir)
		return nil
	}

	results := make([]linter.LintResult, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(file)))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		results = append(results, engine.Lint(file, string(content)))
	}

	summary := engine.GenerateSummary(results)

	switch format {
	case "json":
		if err := checkRSTOutputJSON(results, summary); err != nil {
			return err
		}
	case "github":
		checkRSTOutputGitHub(results)
	default:
		checkRSTOutputText(results, summary)
	}

	if failOnError && summary.Errors > 0 {
		return fmt.Errorf("check failed with %d errors", summary.Errors)
	}
	if failOnWarning && summary.Warnings > 0 {
		return fmt.Errorf("check failed with %d warnings", summary.Warnings)
	}
	return nil
}

// findRSTFiles expands patterns under dir and returns matching documents
// relative to dir, sorted
func findRSTFiles(dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{defaultRSTPattern}
	}

	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		pattern = path.Clean(filepath.ToSlash(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}
		matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			seen[match] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

func checkRSTListRules(engine *linter.LintEngine) error {
	allRules := engine.Registry().GetAllRules()

	fmt.Printf("Available RST rules (%d):\n\n", len(allRules))

	for _, cat := range []linter.Category{
		linter.CategoryMarkup,
		linter.CategoryStructure,
	} {
		catRules := engine.Registry().GetRulesByCategory(cat)
		if len(catRules) == 0 {
			continue
		}

		// Capitalize category name
		catName := string(cat)
		catName = strings.ToUpper(catName[:1]) + catName[1:]

		fmt.Printf("%s Rules:\n", catName)
		for _, rule := range catRules {
			fmt.Printf("  - %-25s [%s]\n    %s\n",
				rule.Name(),
				rule.Severity(),
				rule.Description(),
			)
		}
		fmt.Println()
	}

	return nil
}

func checkRSTOutputText(results []linter.LintResult, summary linter.Summary) {
	hasViolations := false

	for _, result := range results {
		if len(result.Violations) == 0 {
			continue
		}

		hasViolations = true
		fmt.Printf("\n%s:\n", result.Name)

		for _, v := range result.Violations {
			fmt.Printf("  %s:%d:%d: [%s] %s (%s)\n",
				result.Name,
				v.Line,
				v.Column,
				v.Severity,
				v.Message,
				v.Rule,
			)
		}
	}

	// Print summary
	fmt.Printf("\n")
	fmt.Printf("Summary:\n")
	fmt.Printf("  Files:      %d\n", summary.TotalFiles)
	fmt.Printf("  Violations: %d\n", summary.TotalViolations)
	fmt.Printf("  Errors:     %d\n", summary.Errors)
	fmt.Printf("  Warnings:   %d\n", summary.Warnings)
	fmt.Printf("  Infos:      %d\n", summary.Infos)

	if !hasViolations {
		fmt.Println("\n✓ All documents passed RST checks")
	}
}

func checkRSTOutputJSON(results []linter.LintResult, summary linter.Summary) error {
	output := struct {
		Results []linter.LintResult `json:"results"`
		Summary linter.Summary      `json:"summary"`
	}{
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func checkRSTOutputGitHub(results []linter.LintResult) {
	// GitHub Actions annotation format
	// ::error file={name},line={line},col={col}::{message}
	for _, result := range results {
		for _, v := range result.Violations {
			level := "error"
			if v.Severity == linter.SeverityWarning {
				level = "warning"
			} else if v.Severity == linter.SeverityInfo {
				level = "notice"
			}

			fmt.Printf("::%s file=%s,line=%d,col=%d::[%s] %s\n",
				level,
				result.Name,
				v.Line,
				v.Column,
				v.Rule,
				v.Message,
			)
		}
	}
}
