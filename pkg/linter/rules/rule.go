package rules

import (
	"github.com/platinummonkey/protodoc/pkg/linter"
)

// BaseRule provides common functionality for rules
type BaseRule struct {
	RuleName        string
	RuleCategory    linter.Category
	RuleSeverity    linter.Severity
	RuleDescription string
}

func (r *BaseRule) Name() string              { return r.RuleName }
func (r *BaseRule) Category() linter.Category { return r.RuleCategory }
func (r *BaseRule) Severity() linter.Severity { return r.RuleSeverity }
func (r *BaseRule) Description() string       { return r.RuleDescription }

func (r *BaseRule) violation(message string, line, column int) linter.Violation {
	return linter.Violation{
		Rule:     r.RuleName,
		Severity: r.RuleSeverity,
		Category: r.RuleCategory,
		Message:  message,
		Line:     line,
		Column:   column,
	}
}
