package synthesis

import (
	"regexp"
	"strings"
)

// sourceMarker matches "Source: <url>" with optional markdown emphasis and
// angle brackets. A "source:" not followed by a URL is prose.
var sourceMarker = regexp.MustCompile(`(?i)\**\bsource\**\s*:\s*\**\s*<?(https?://[^\s>]+)>?`)

// ParseSource removes every "Source: <url>" marker from text. It returns the
// cleaned answer and the URL of the last marker, if any.
func ParseSource(text string) (answer string, url string, found bool) {
	matches := sourceMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text), "", false
	}

	lastMatch := matches[len(matches)-1]
	url = cleanURL(text[lastMatch[2]:lastMatch[3]])

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]
	}
	b.WriteString(text[last:])

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	answer = strings.TrimSpace(strings.Join(kept, "\n"))

	return answer, url, url != ""
}

func cleanURL(raw string) string {
	return strings.Trim(raw, "<>()[]{}\"'`*.,;")
}
