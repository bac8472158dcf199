// Package linter provides syntax checks for generated reStructuredText.
//
// # Overview
//
// Every rendered message block is passed through a LintEngine before it is
// emitted. Rules catch markup that Sphinx would accept silently but render
// wrongly, such as single backticks meant as inline literals.
//
// # Rule Categories
//
// Markup: inline markup problems (backticks)
// Structure: section structure problems (header underlines)
//
// # Usage Example
//
//	engine := linter.NewLintEngine(linter.DefaultConfig())
//	for _, rule := range rules.DefaultRules() {
//		engine.Registry().Register(rule)
//	}
//
//	if err := engine.Validate("envoy.config.Foo", block); err != nil {
//		log.Warnf("Bad RST (%s): %v", "envoy.config.Foo", err)
//	}
//
// Configuration is read from protodoc-lint.yaml:
//
//	version: v1
//	rules:
//	  header-underline: false
//	severities:
//	  single-backticks: error
//
// # Related Packages
//
//   - pkg/linter/rules: Individual lint rules
package linter
