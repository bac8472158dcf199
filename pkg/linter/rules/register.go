package rules

import (
	"github.com/platinummonkey/protodoc/pkg/linter"
)

// DefaultRules returns all built-in lint rules
func DefaultRules() []linter.Rule {
	return []linter.Rule{
		NewSingleBackticksRule(),
		NewHeaderUnderlineRule(),
	}
}

// RegisterDefaultRules registers all built-in lint rules
func RegisterDefaultRules(registry *linter.RuleRegistry) {
	for _, rule := range DefaultRules() {
		registry.Register(rule)
	}
}
