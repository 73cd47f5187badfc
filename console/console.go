// Package console implements [localchat.Output] for line-mode sessions.
//
// Replies stream to stdout after a "Bot: " prefix exactly as the fragments
// arrive. Errors go to stderr. Colors come from a [localchat.Theme] and are
// only emitted when the destination writer is a color-capable terminal.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/localchat"
)

// ReplyPrefix introduces every assistant reply.
const ReplyPrefix = "Bot: "

// Interface compliance check.
var _ localchat.Output = (*Console)(nil)

type styles struct {
	reply    lipgloss.Style
	thinking lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	err      lipgloss.Style
	hint     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, t localchat.Theme) styles {
	return styles{
		reply:    r.NewStyle().Foreground(ansiColor(t.Reply)).Bold(true),
		thinking: r.NewStyle().Foreground(ansiColor(t.Thinking)).Faint(true),
		muted:    r.NewStyle().Foreground(ansiColor(t.Muted)),
		accent:   r.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		err:      r.NewStyle().Foreground(ansiColor(t.Error)).Bold(true),
		hint:     r.NewStyle().Foreground(ansiColor(t.Hint)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// Console writes a conversation to a pair of writers.
type Console struct {
	out       io.Writer
	errOut    io.Writer
	outStyles styles
	errStyles styles

	theme        localchat.Theme
	showThinking bool

	// line state of out
	replyOpen    bool
	replyEmpty   bool // prefix written, no reply text yet
	thinkingOpen bool
}

// Option configures a [Console].
type Option func(*Console)

// WithTheme sets the color theme.
func WithTheme(t localchat.Theme) Option {
	return func(c *Console) { c.theme = t }
}

// WithShowThinking prints reasoning fragments, muted, before the reply.
// They are dropped otherwise.
func WithShowThinking(show bool) Option {
	return func(c *Console) { c.showThinking = show }
}

// New creates a Console writing replies and status lines to out and errors
// to errOut.
func New(out, errOut io.Writer, opts ...Option) *Console {
	c := &Console{
		out:    out,
		errOut: errOut,
		theme:  localchat.DefaultTheme(),
	}
	for _, o := range opts {
		o(c)
	}
	c.outStyles = newStyles(lipgloss.NewRenderer(out), c.theme)
	c.errStyles = newStyles(lipgloss.NewRenderer(errOut), c.theme)
	return c
}

// Banner prints the session header.
func (c *Console) Banner(model, systemPrompt string) {
	fmt.Fprintf(c.out, "\n%s\n", paint(c.outStyles.accent, fmt.Sprintf("* Local AI (%s) is ready!", model)))
	fmt.Fprintf(c.out, "%s\n", paint(c.outStyles.muted, "- System: "+systemPrompt))
	fmt.Fprint(c.out, "Type 'exit' or 'quit' to end the session.\n\n")
}

// Starting announces the model before the startup check.
func (c *Console) Starting(model string) {
	c.Status(fmt.Sprintf("Initializing model: %s...", model))
}

// BeginReply writes the reply prefix before any text has arrived, so a turn
// that fails before streaming still shows it.
func (c *Console) BeginReply() {
	c.closeLine()
	c.openReply()
}

// Fragment writes reply text, preceded by the reply prefix on the first
// fragment of a reply.
func (c *Console) Fragment(text string) {
	if text == "" {
		return
	}
	c.closeThinking()
	c.openReply()
	io.WriteString(c.out, text)
	c.replyEmpty = false
}

// Thinking writes reasoning text when enabled.
func (c *Console) Thinking(text string) {
	if !c.showThinking || text == "" {
		return
	}
	if !c.thinkingOpen {
		// Reasoning shares the line with an empty prefix.
		if c.replyOpen && !c.replyEmpty {
			io.WriteString(c.out, "\n")
		}
		c.replyOpen = false
		io.WriteString(c.out, paint(c.outStyles.thinking, "(thinking) "))
		c.thinkingOpen = true
	}
	io.WriteString(c.out, paint(c.outStyles.thinking, text))
}

// EndReply terminates the reply line.
func (c *Console) EndReply() {
	c.closeThinking()
	c.openReply()
	io.WriteString(c.out, "\n")
	c.replyOpen = false
}

// Status prints an informational line.
func (c *Console) Status(msg string) {
	c.closeLine()
	fmt.Fprintf(c.out, "%s\n", paint(c.outStyles.muted, msg))
}

// Error reports a failed turn on errOut, followed by hint when not empty.
// Any partial reply stays on screen; its line is terminated first.
func (c *Console) Error(err error, hint string) {
	c.closeLine()
	fmt.Fprintf(c.errOut, "%s\n", paint(c.errStyles.err, "! Error: "+err.Error()))
	if hint != "" {
		fmt.Fprintf(c.errOut, "%s\n", paint(c.errStyles.hint, "Tip: "+hint))
	}
}

func (c *Console) openReply() {
	if c.replyOpen {
		return
	}
	io.WriteString(c.out, paint(c.outStyles.reply, ReplyPrefix))
	c.replyOpen = true
	c.replyEmpty = true
}

func (c *Console) closeThinking() {
	if c.thinkingOpen {
		io.WriteString(c.out, "\n")
		c.thinkingOpen = false
	}
}

func (c *Console) closeLine() {
	if c.replyOpen || c.thinkingOpen {
		io.WriteString(c.out, "\n")
	}
	c.replyOpen = false
	c.thinkingOpen = false
}

// paint styles s line by line so that embedded newlines pass through
// unchanged.
func paint(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = style.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
