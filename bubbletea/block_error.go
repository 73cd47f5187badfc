package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed turn and an optional remediation tip.
type ErrorBlock struct {
	err    error
	hint   string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock. hint may be empty.
func NewErrorBlock(err error, hint string, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, hint: hint, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	view := wrap.Render(b.styles.Error.Render("! Error: " + b.err.Error()))
	if b.hint != "" {
		view += "\n" + wrap.Render(b.styles.Hint.Render("Tip: "+b.hint))
	}
	return view
}
