package linter

import (
	"fmt"
	"strings"
)

// LintEngine orchestrates the linting process
type LintEngine struct {
	config   *Config
	registry *RuleRegistry
}

// NewLintEngine creates a new lint engine
func NewLintEngine(config *Config) *LintEngine {
	if config == nil {
		config = DefaultConfig()
	}

	return &LintEngine{
		config:   config,
		registry: NewRuleRegistry(),
	}
}

// Registry returns the engine's rule registry
func (e *LintEngine) Registry() *RuleRegistry {
	return e.registry
}

// Lint runs all enabled rules against a block of RST text
func (e *LintEngine) Lint(name, text string) LintResult {
	result := LintResult{
		Name:       name,
		Violations: make([]Violation, 0),
	}

	ctx := &LintContext{
		Name:   name,
		Config: e.config,
	}

	for _, rule := range e.registry.GetEnabledRules(e.config) {
		violations := rule.Check(text, ctx)
		for i := range violations {
			violations[i].Severity = e.config.SeverityFor(rule)
		}
		result.Violations = append(result.Violations, violations...)
	}

	return result
}

// Validate lints text and folds error and warning violations into a single
// error. Info violations never fail validation.
func (e *LintEngine) Validate(name, text string) error {
	result := e.Lint(name, text)

	var messages []string
	for _, v := range result.Violations {
		if v.Severity == SeverityInfo {
			continue
		}
		messages = append(messages, v.String())
	}
	if len(messages) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

// GenerateSummary creates a summary of lint results
func (e *LintEngine) GenerateSummary(results []LintResult) Summary {
	summary := Summary{
		TotalFiles: len(results),
	}

	for _, result := range results {
		summary.TotalViolations += len(result.Violations)
		for _, v := range result.Violations {
			switch v.Severity {
			case SeverityError:
				summary.Errors++
			case SeverityWarning:
				summary.Warnings++
			case SeverityInfo:
				summary.Infos++
			}
		}
	}

	return summary
}

// LintResult contains the result of linting a single block or file
type LintResult struct {
	Name       string      `json:"name"`
	Violations []Violation `json:"violations"`
}

// Violation represents a linting violation
type Violation struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	// Line and Column are 1-based.
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%d:%d: %s (%s)", v.Line, v.Column, v.Message, v.Rule)
}

// Severity indicates how serious a violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category groups related rules
type Category string

const (
	CategoryMarkup    Category = "markup"
	CategoryStructure Category = "structure"
)

// Summary provides an overview of all lint results
type Summary struct {
	TotalFiles      int `json:"total_files"`
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
}

// LintContext provides context during rule checking
type LintContext struct {
	Name   string
	Config *Config
}
