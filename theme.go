package localchat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg  int // "You:" prompt and user message accent
	Reply    int // "Bot:" reply prefix
	Thinking int // Reasoning text
	Error    int // Error lines
	Hint     int // Remediation tips
	Muted    int // Status lines, placeholders
	Accent   int // Banner, headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		Reply:    2,
		Thinking: 8,
		Error:    1,
		Hint:     3,
		Muted:    8,
		Accent:   5,
	}
}
