package rules

import (
	"unicode"

	"github.com/platinummonkey/protodoc/pkg/linter"
)

// SingleBackticksRule flags text wrapped in single backticks. In RST that is
// interpreted text in the default role, which is almost always a mistyped
// inline literal (``like this``).
type SingleBackticksRule struct {
	BaseRule
}

// NewSingleBackticksRule creates a new single backticks rule
func NewSingleBackticksRule() *SingleBackticksRule {
	return &SingleBackticksRule{
		BaseRule: BaseRule{
			RuleName:        "single-backticks",
			RuleCategory:    linter.CategoryMarkup,
			RuleSeverity:    linter.SeverityWarning,
			RuleDescription: "Inline literals must use double backticks",
		},
	}
}

// Check scans text for interpreted text that is neither a role nor a
// hyperlink reference
func (r *SingleBackticksRule) Check(text string, ctx *linter.LintContext) []linter.Violation {
	var violations []linter.Violation

	runes := []rune(text)
	line, col := 1, 1
	advance := func(n int, i *int) {
		for k := 0; k < n && *i < len(runes); k++ {
			if runes[*i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			*i++
		}
	}

	for i := 0; i < len(runes); {
		if runes[i] != '`' {
			advance(1, &i)
			continue
		}

		// Inline literal: skip to the closing double backtick.
		if i+1 < len(runes) && runes[i+1] == '`' {
			end := indexFrom(runes, i+2, "``")
			if end < 0 {
				advance(len(runes)-i, &i)
				break
			}
			advance(end+2-i, &i)
			continue
		}

		startLine, startCol := line, col

		// Inline markup may not start directly after a word character or
		// before whitespace.
		if (i > 0 && isWordRune(runes[i-1])) || (i+1 < len(runes) && unicode.IsSpace(runes[i+1])) {
			advance(1, &i)
			continue
		}

		role := i > 0 && runes[i-1] == ':'
		end := indexFrom(runes, i+1, "`")
		if end < 0 {
			violations = append(violations, r.violation("unmatched backtick", startLine, startCol))
			advance(1, &i)
			continue
		}

		reference := end+1 < len(runes) && runes[end+1] == '_'
		if !role && !reference {
			content := string(runes[i+1 : end])
			violations = append(violations, r.violation(
				"single backticks around "+quote(content)+"; use ``"+content+"`` for inline literals",
				startLine, startCol))
		}
		advance(end+1-i, &i)
	}

	return violations
}

// indexFrom returns the rune index of the first occurrence of sub at or
// after from, or -1
func indexFrom(runes []rune, from int, sub string) int {
	needle := []rune(sub)
	for i := from; i+len(needle) <= len(runes); i++ {
		if string(runes[i:i+len(needle)]) == sub {
			return i
		}
	}
	return -1
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func quote(s string) string {
	if r := []rune(s); len(r) > 40 {
		s = string(r[:37]) + "..."
	}
	return "\"" + s + "\""
}
