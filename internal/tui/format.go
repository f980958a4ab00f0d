package tui

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// numberPrinter formats counters with locale thousands separators.
var numberPrinter = message.NewPrinter(language.English)

// formatCount renders n with thousands separators: 1234567 -> "1,234,567".
func formatCount(n int64) string {
	return numberPrinter.Sprintf("%d", n)
}

// durationMinutes rounds a duration in seconds to whole minutes: 125 -> 2.
func durationMinutes(secs float64) int64 {
	return int64(math.Round(secs / 60))
}

// firstLine returns s up to its first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate shortens plain text to at most width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// compactJSON renders raw JSON on one line, or "" if there is none.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// clipLines cuts every line of styled content to width cells.
func clipLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}
