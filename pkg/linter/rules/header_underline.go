package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/platinummonkey/protodoc/pkg/linter"
)

const underlineChars = "=-~^\"'`#*+:._"

// HeaderUnderlineRule flags section titles whose underline is shorter than
// the title text
type HeaderUnderlineRule struct {
	BaseRule
}

// NewHeaderUnderlineRule creates a new header underline rule
func NewHeaderUnderlineRule() *HeaderUnderlineRule {
	return &HeaderUnderlineRule{
		BaseRule: BaseRule{
			RuleName:        "header-underline",
			RuleCategory:    linter.CategoryStructure,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Section underlines must be at least as long as the title",
		},
	}
}

// Check compares every title/underline pair in text
func (r *HeaderUnderlineRule) Check(text string, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation

	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		underline := strings.TrimRight(lines[i], " ")
		title := strings.TrimRight(lines[i-1], " ")
		if !isUnderline(underline) || title == "" || isUnderline(title) {
			continue
		}
		// Indented lines belong to a body element, not a section.
		if strings.HasPrefix(title, " ") || strings.HasPrefix(underline, " ") {
			continue
		}
		want := utf8.RuneCountInString(title)
		if got := utf8.RuneCountInString(underline); got < want {
			violations = append(violations, r.violation(
				fmt.Sprintf("title underline too short (%d < %d)", got, want), i+1, 1))
		}
	}

	return violations
}

// isUnderline reports whether s is a run of a single punctuation character
// long enough to be read as a section adornment
func isUnderline(s string) bool {
	if utf8.RuneCountInString(s) < 4 {
		return false
	}
	c := s[0]
	if !strings.ContainsRune(underlineChars, rune(c)) {
		return false
	}
	return strings.Count(s, string(c)) == len(s)
}
