// Package goldmark renders assistant replies, which are usually markdown,
// to ANSI-styled terminal text. Parsing is done by goldmark and styling by
// lipgloss.
package goldmark

import "github.com/fwojciec/localchat"

const defaultWidth = 80

// Render parses markdown source and returns styled terminal output.
// Paragraphs, headings, quotes and list items are word-wrapped to width;
// code blocks keep their lines as written.
func Render(source string, width int, theme localchat.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme, []byte(source)).run(width)
}
