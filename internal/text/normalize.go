// Package text cleans up user-typed message text before it is journaled and
// handed on: invisible and control characters go, line endings and spacing are
// made uniform.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	invisibleMarker = strings.NewReplacer(
		"\u2060", "", // word joiner
		"\uFEFF", "", // byte order mark
		"\u00AD", "", // soft hyphen
		"\u200E", "", // left-to-right mark
		"\u200F", "", // right-to-left mark
		"\u2061", "",
		"\u2062", "",
		"\u2063", "",
		"\u2064", "",
		"\u2028", "\n",
		"\u2029", "\n\n",
		"\u200B", " ",
		"\u200C", " ",
		"\u205F", " ",
		"\u2009", " ",
		"\u200A", " ",
		"\u202F", " ",
		"\u3000", " ",
		"\u00A0", " ",
	)
)

// Normalize returns input with line endings converted to LF, invisible and
// control characters removed, runs of spaces collapsed within each line, and
// more than one blank line collapsed to one. The result is trimmed and may be empty.
func Normalize(input string) string {
	if input == "" {
		return ""
	}

	s := strings.ReplaceAll(input, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = invisibleMarker.Replace(s)
	s = controlChars.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	s = strings.Join(lines, "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

func collapseSpaces(line string) string {
	var sb strings.Builder
	space := false
	for _, r := range line {
		if unicode.IsSpace(r) {
			if !space {
				sb.WriteRune(' ')
				space = true
			}
			continue
		}
		sb.WriteRune(r)
		space = false
	}
	return strings.TrimSpace(sb.String())
}
