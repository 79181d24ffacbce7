package reasoning

import (
	"strings"
	"unicode"
)

const boldDelimiter = "**"

// Split extracts the title (first non-empty bold span) and the body (text
// after the first closing delimiter) of a reasoning block. Either value is
// empty when it cannot be found. Delimiters are matched first-come; nesting
// is not recognised.
func Split(text string) (title, body string) {
	return FirstBold(text), Body(text)
}

// FirstBold returns the trimmed contents of the first bold span whose contents
// are not blank, e.g. "Thinking" from "**Thinking**".
func FirstBold(s string) string {
	i := 0
	for i+1 < len(s) {
		if s[i] != '*' || s[i+1] != '*' {
			i++
			continue
		}
		start := i + 2
		j := start
		for j+1 < len(s) {
			if s[j] == '*' && s[j+1] == '*' {
				if inner := strings.TrimSpace(s[start:j]); inner != "" {
					return inner
				}
				break
			}
			j++
		}
		i = j + 2
	}
	return ""
}

// Body returns the text following the first "**title**" pair with leading
// whitespace removed.
func Body(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, boldDelimiter)
	if open < 0 {
		return ""
	}
	afterOpen := s[open+len(boldDelimiter):]
	closeIdx := strings.Index(afterOpen, boldDelimiter)
	if closeIdx < 0 {
		return ""
	}
	rest := open + len(boldDelimiter) + closeIdx + len(boldDelimiter)
	if rest >= len(s) {
		return ""
	}
	return strings.TrimLeftFunc(s[rest:], unicode.IsSpace)
}
