// Package sanitize cleans user-authored scenario text before it is returned
// to MCP clients. Scenario names, profile names and string attributes come
// from files an agent may not control, so tags, markdown structure and
// control characters are stripped before they reach a model's context.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxTextLength is the maximum length of sanitized free text.
const MaxTextLength = 500

// MaxIdentifierLength is the maximum length of sanitized identifiers.
const MaxIdentifierLength = 120

var (
	// reXMLTag matches XML/HTML tags, with attributes or self-closing, and
	// processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	reMarkdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reHorizontalRule  = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	reTripleBacktick  = regexp.MustCompile("```+")
	reWhitespaceRun   = regexp.MustCompile(`\s{2,}`)
	reRepeatedDots    = regexp.MustCompile(`\.{2,}`)
)

// Text sanitizes a scenario or profile name, or any other short free text.
// The result is a single line:
//  1. Strip XML/HTML tags
//  2. Drop markdown headings and horizontal rules
//  3. Strip control characters
//  4. Collapse triple backticks to a single backtick
//  5. Collapse whitespace runs, newlines included, to one space
//  6. Truncate to MaxTextLength
func Text(input string) string {
	if input == "" {
		return ""
	}

	s := reXMLTag.ReplaceAllString(input, "")
	s = reMarkdownHeading.ReplaceAllString(s, "")
	s = reHorizontalRule.ReplaceAllString(s, "")
	s = stripControlChars(s)
	s = reTripleBacktick.ReplaceAllString(s, "`")
	s = reWhitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > MaxTextLength {
		s = s[:MaxTextLength] + "..."
	}
	return s
}

// Identifier keeps only [a-zA-Z0-9._-] so node ids, score labels and
// function paths stay machine-readable. Repeated dots are collapsed.
func Identifier(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := reRepeatedDots.ReplaceAllString(b.String(), ".")

	if len(s) > MaxIdentifierLength {
		s = s[:MaxIdentifierLength]
	}
	return s
}

// stripControlChars turns tabs and newlines into spaces and drops every
// other ASCII control character.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
