package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/localchat"
	"github.com/fwojciec/localchat/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders a reply as markdown while it streams in.
// The last rendering is cached and reused until the text or width changes.
type AssistantTextBlock struct {
	raw   strings.Builder
	theme localchat.Theme

	cachedWidth int
	cachedLen   int
	cached      string
}

// NewAssistantTextBlock creates an empty reply block.
func NewAssistantTextBlock(theme localchat.Theme) *AssistantTextBlock {
	return &AssistantTextBlock{theme: theme, cachedLen: -1}
}

// Append adds a reply fragment.
func (b *AssistantTextBlock) Append(text string) {
	b.raw.WriteString(text)
}

// Text returns the reply received so far.
func (b *AssistantTextBlock) Text() string {
	return b.raw.String()
}

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	if width == b.cachedWidth && b.raw.Len() == b.cachedLen {
		return b.cached
	}
	src := b.raw.String()
	if hasUnclosedFence(src) {
		// A code block still streaming is rendered as if it were closed.
		src += "\n```"
	}
	b.cached = goldmark.Render(src, width, b.theme)
	b.cachedWidth = width
	b.cachedLen = b.raw.Len()
	return b.cached
}

// hasUnclosedFence reports whether s opens a fenced code block it does not
// close. Backtick runs inside inline code are not distinguished.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
