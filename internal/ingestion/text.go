// Package ingestion loads uploaded resume documents (text, markdown, PDF,
// HTML, DOCX) as cleaned plain text and places it in the document store.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	runsOfSpace    = regexp.MustCompile(`\s+`)
	manyBlankLines = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes extracted text while keeping its line structure:
// LF line endings, no control characters, single spaces inside lines, and
// at most one blank line between blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = stripControls(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := manyBlankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// stripControls drops NUL and other non-printing characters except tab and
// newline
func stripControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// cleanLine normalizes one line. Headings lose their indentation; bullet
// and other indented lines keep it.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return runsOfSpace.ReplaceAllString(trimmed, " ")
	}

	indent := len(line) - len(trimmed)
	body := runsOfSpace.ReplaceAllString(trimmed, " ")
	if isBulletLine(trimmed) {
		// Bullets are kept verbatim after the marker
		body = trimmed
	}
	if indent > 0 {
		return strings.Repeat(" ", indent) + body
	}
	return body
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}
