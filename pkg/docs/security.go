package docs

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/protodoc/pkg/registry"
	"github.com/platinummonkey/protodoc/pkg/schema"
)

// formatSecurityOptions renders the attention block for a field carrying a
// udpa.annotations.security option. The field must have a manifest entry.
func (r *Renderer) formatSecurityOptions(opt *schema.SecurityOption, f *schema.Field) (string, error) {
	entry, ok := r.registry.ManifestEntry(f.FullName)
	if !ok {
		return "", newError(ErrMissingManifestEntry, f.FullName)
	}

	var sections []string
	if opt.ConfigureForUntrustedDownstream {
		sections = append(sections, indentLines(4, "This field should be configured in the presence of untrusted *downstreams*."))
	}
	if opt.ConfigureForUntrustedUpstream {
		sections = append(sections, indentLines(4, "This field should be configured in the presence of untrusted *upstreams*."))
	}
	if note := strings.TrimSpace(entry.Note); note != "" {
		sections = append(sections, indentLines(4, note))
	}

	example, err := formatEdgeExample(f.Name, entry)
	if err != nil {
		return "", &Error{Kind: ErrMissingManifestEntry, Name: f.FullName, Cause: err}
	}
	sections = append(sections,
		indentLines(4, "Example configuration for untrusted environments:\n\n")+
			indentLines(4, ".. code-block:: yaml\n\n")+
			indentLines(6, example)+"\n")

	return ".. attention::\n" + strings.Join(sections, "\n\n"), nil
}

// formatEdgeExample serializes the manifest example nested under the field's
// short name.
func formatEdgeExample(fieldName string, entry registry.ManifestEntry) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]interface{}{fieldName: entry.Example}); err != nil {
		return "", fmt.Errorf("encode example: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode example: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
