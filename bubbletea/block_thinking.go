package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ThinkingBlock)(nil)

// ThinkingBlock renders model reasoning behind a collapsible header.
// Reasoning is display-only and never becomes part of the history.
type ThinkingBlock struct {
	content   strings.Builder
	collapsed bool
	styles    Styles
}

// NewThinkingBlock creates a ThinkingBlock. Collapsed blocks show only the
// header.
func NewThinkingBlock(styles Styles, collapsed bool) *ThinkingBlock {
	return &ThinkingBlock{collapsed: collapsed, styles: styles}
}

// Append adds a thinking text delta.
func (b *ThinkingBlock) Append(text string) {
	b.content.WriteString(text)
}

func (b *ThinkingBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ThinkingBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	header := b.styles.Thinking.Render(wrap.Render(indicator + " Thinking"))
	if b.collapsed {
		return header
	}
	return header + "\n" + b.styles.Thinking.Render(wrap.Render(b.content.String()))
}
