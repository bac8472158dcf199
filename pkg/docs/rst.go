package docs

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	fileHeaderStyle = '='
	typeHeaderStyle = '-'

	// invisibleSeparator keeps an enum value's definition body non-empty
	// when it has no comment.
	invisibleSeparator = "\u2063"
)

const wipWarning = ".. warning::\n" +
	"   This API feature is currently work-in-progress. API features marked as " +
	"work-in-progress are not considered stable, are not covered by the :ref:`threat model " +
	"<arch_overview_threat_model>`, are not supported by the security team, and are subject to " +
	"breaking changes. Do not use this feature without understanding each of the previous " +
	"points.\n\n"

const orphanMarker = ":orphan:\n\n"

func formatAnchor(label string) string {
	return ".. _" + label + ":\n\n"
}

// formatHeader underlines text with style, one adornment per rune.
func formatHeader(style rune, text string) string {
	return text + "\n" + strings.Repeat(string(style), utf8.RuneCountInString(text)) + "\n\n"
}

func formatInternalLink(text, ref string) string {
	return fmt.Sprintf(":ref:`%s <%s>`", text, ref)
}

func formatExternalLink(text, url string) string {
	return fmt.Sprintf("`%s <%s>`_", text, url)
}

// indentLines indents every non-empty line of s.
func indentLines(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// stripLeadingSpace removes the single space protoc leaves after the comment
// marker on every line.
func stripLeadingSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, " ")
	}
	return strings.Join(lines, "\n")
}
