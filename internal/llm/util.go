// Package llm - util.go cleans up completion text before it is validated.
package llm

import "strings"

// preamblePhrases open a conversational lead-in that precedes the payload
var preamblePhrases = []string{
	"here's", "here is", "here are", "below is", "sure", "certainly",
	"as requested", "output", "result", "the json", "json",
}

// trailerPhrases open an explanatory sentence appended after the payload
var trailerPhrases = []string{
	"let me know", "i hope this helps", "hope this helps", "note:",
	"please note", "feel free", "this json", "the above",
}

// Sanitize strips the wrapping text models commonly add around a JSON
// payload: markdown fences, "json:" labels, conversational preambles,
// trailing remarks and anything after a complete top-level value.
//
// Every rule only ever removes text, and the rules are applied until none
// of them matches, so Sanitize(Sanitize(x)) == Sanitize(x). Input that
// matches no rule comes back trimmed and otherwise unchanged.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	for {
		next := sanitizeStep(text)
		if next == text {
			return text
		}
		text = next
	}
}

func sanitizeStep(text string) string {
	text = strings.TrimSpace(text)
	text = stripFences(text)
	text = stripLabel(text)
	text = stripPreamble(text)
	text = stripTrailer(text)
	if end := valueEnd(text); end > 0 && end < len(text) {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

func stripFences(text string) string {
	if strings.HasPrefix(text, "```") {
		text = text[3:]
		// Skip the language identifier on the opening line
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			first := text[:idx]
			if len(first) < 20 && !strings.ContainsAny(first, " {[\"") {
				text = text[idx+1:]
			}
		}
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(text[:len(text)-3])
	}
	return text
}

func stripLabel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "json:"):
		return text[len("json:"):]
	case strings.HasPrefix(lower, "json\n"), strings.HasPrefix(lower, "json\r\n"):
		return text[strings.IndexByte(text, '\n')+1:]
	}
	return text
}

// stripPreamble drops a lead-in before the first bracket when it reads like
// conversation rather than data.
func stripPreamble(text string) string {
	idx := strings.IndexAny(text, "{[")
	if idx <= 0 {
		return text
	}
	pre := strings.TrimSpace(text[:idx])
	if pre == "" {
		return text[idx:]
	}
	if strings.ContainsAny(pre, "\"}]") {
		return text
	}
	if strings.HasSuffix(pre, ":") {
		return text[idx:]
	}
	lower := strings.ToLower(pre)
	for _, p := range preamblePhrases {
		if strings.HasPrefix(lower, p) {
			return text[idx:]
		}
	}
	return text
}

// stripTrailer removes a final line that matches a known closing remark
func stripTrailer(text string) string {
	idx := strings.LastIndexByte(text, '\n')
	if idx < 0 {
		return text
	}
	last := strings.ToLower(strings.TrimSpace(text[idx+1:]))
	if strings.ContainsAny(last, "{}[]\"") {
		return text
	}
	for _, p := range trailerPhrases {
		if strings.HasPrefix(last, p) {
			return text[:idx]
		}
	}
	return text
}

// valueEnd returns the index just past the top-level object or array that
// starts the text, or -1 if the text does not start with one or it never
// closes. Brackets inside strings are ignored.
func valueEnd(text string) int {
	if text == "" || (text[0] != '{' && text[0] != '[') {
		return -1
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
