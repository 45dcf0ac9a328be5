// internal/textutil/textutil.go
// Package textutil shortens and wraps text for log lines and the terminal UI.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// WrapToWidth wraps text at width runes, breaking words that do not fit on a line.
func WrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	n := 0
	flush := func() {
		if n > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, w := range words {
		wLen := utf8.RuneCountInString(w)
		switch {
		case n > 0 && n+1+wLen <= width:
			cur.WriteByte(' ')
			cur.WriteString(w)
			n += 1 + wLen
		case wLen <= width:
			flush()
			cur.WriteString(w)
			n = wLen
		default:
			flush()
			r := []rune(w)
			for len(r) > width {
				lines = append(lines, string(r[:width]))
				r = r[width:]
			}
			cur.WriteString(string(r))
			n = len(r)
		}
	}
	flush()
	return lines
}
