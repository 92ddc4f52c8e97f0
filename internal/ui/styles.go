package ui

import "fmt"

// Style is an ANSI 256 foreground color.
type Style uint8

// Palette used by the CLI help output.
const (
	Accent  Style = 74  // blue, section headings
	Command Style = 250 // light gray, command names
	Muted   Style = 245 // medium gray, annotations
)

var noColor bool

// Render wraps s in the style's escape sequence. When color is disabled
// the string passes through unchanged.
func (st Style) Render(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", uint8(st), s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
