package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/localchat"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	run      TurnFunc
	store    *localchat.Store
	theme    localchat.Theme
	styles   Styles
	model    string
	hint     func(error) string
	onCommit func(localchat.Turn)

	showThinking bool

	blocks     []MessageBlock
	blockFocus int // index of focused thinking block (-1 = none)

	// Blocks receiving the in-flight reply.
	activeText     *AssistantTextBlock
	activeThinking *ThinkingBlock

	running bool
	cancel  context.CancelFunc
	eventCh chan localchat.Event
	doneCh  chan localchat.TurnResult
	err     error
	ready   bool
}

// Option configures a Model.
type Option func(*Model)

// WithModelName shows the model identifier in the status line.
func WithModelName(name string) Option {
	return func(m *Model) { m.model = name }
}

// WithHint sets the function producing the tip shown under a failed turn.
// It is not consulted for interrupted turns.
func WithHint(fn func(error) string) Option {
	return func(m *Model) { m.hint = fn }
}

// WithCommitHook sets a callback invoked after each turn is committed.
func WithCommitHook(fn func(localchat.Turn)) Option {
	return func(m *Model) { m.onCommit = fn }
}

// WithShowThinking expands reasoning blocks by default.
func WithShowThinking(show bool) Option {
	return func(m *Model) { m.showThinking = show }
}

// New creates a TUI Model that runs turns with run and commits completed
// turns into store.
func New(run TurnFunc, store *localchat.Store, theme localchat.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:      ti,
		run:        run,
		store:      store,
		theme:      theme,
		styles:     NewStyles(theme),
		blockFocus: -1,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Running returns whether a turn is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last failed turn, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m.refresh()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		return m.finishTurn(msg.Result)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.UserMsg.Render(localchat.Prompt))
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const inputHeight, statusHeight, gaps = 1, 1, 2
	vpHeight := max(msg.Height-inputHeight-statusHeight-gaps, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderHistory()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.refresh()

	m.Input.Width = max(msg.Width-len(localchat.Prompt), 1)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyCtrlD:
		if !m.running && m.Input.Value() == "" {
			return m, tea.Quit
		}

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		input := m.Input.Value()
		if strings.TrimSpace(input) == "" {
			m.Input.SetValue("")
			return m, nil
		}
		if localchat.IsExit(input) {
			return m, tea.Quit
		}
		return m.submit(input)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
		}
		return m, nil
	}

	if m.running {
		return m, nil
	}

	// Character keys go to the input only; 'j'/'k' would otherwise scroll.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(strings.TrimSpace(input), m.styles))
	m.activeText = nil
	m.activeThinking = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan localchat.Event, 256)
	m.doneCh = make(chan localchat.TurnResult, 1)
	m.running = true
	m.Input.Blur()
	m.refresh()

	return m, tea.Batch(
		startTurn(ctx, m.run, m.store.Snapshot(), input, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

// finishTurn commits a completed reply or records the failure. It runs on
// the update goroutine, after the turn's goroutine has returned.
func (m Model) finishTurn(result localchat.TurnResult) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	switch r := result.(type) {
	case localchat.TurnCompleted:
		if m.activeText == nil {
			reply := NewAssistantTextBlock(m.theme)
			reply.Append(r.Reply)
			m.blocks = append(m.blocks, reply)
		}
		turn := m.store.Commit(r.User, r.Reply)
		if m.onCommit != nil {
			m.onCommit(turn)
		}
	case localchat.TurnFailed:
		m.err = r.Err
		m.blocks = append(m.blocks, NewErrorBlock(r.Err, m.hintFor(r.Err), m.styles))
	case localchat.TurnExit:
		return m, tea.Quit
	case localchat.TurnSkipped:
	}
	m.activeText = nil
	m.activeThinking = nil
	m = m.updateBlockFocus()
	m.refresh()
	return m, m.Input.Focus()
}

func (m Model) hintFor(err error) string {
	if m.hint == nil || errors.Is(err, localchat.ErrInterrupted) {
		return ""
	}
	return m.hint(err)
}

// renderHistory creates blocks for turns already in the store.
func (m Model) renderHistory() Model {
	for _, t := range m.store.Snapshot() {
		m.blocks = append(m.blocks, NewUserMessageBlock(t.User, m.styles))
		reply := NewAssistantTextBlock(m.theme)
		reply.Append(t.Assistant)
		m.blocks = append(m.blocks, reply)
	}
	return m
}

func (m *Model) refresh() {
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processEvent routes a streaming event to the block for its kind.
func (m Model) processEvent(evt localchat.Event) Model {
	switch e := evt.(type) {
	case localchat.EventTextDelta:
		if m.activeText == nil {
			m.activeText = NewAssistantTextBlock(m.theme)
			m.blocks = append(m.blocks, m.activeText)
		}
		m.activeText.Append(e.Delta)
	case localchat.EventThinkingDelta:
		if m.activeThinking == nil {
			m.activeThinking = NewThinkingBlock(m.styles, !m.showThinking)
			m.blocks = append(m.blocks, m.activeThinking)
			m = m.updateBlockFocus()
		}
		m.activeThinking.Append(e.Delta)
	}
	return m
}

// updateBlockFocus focuses the most recent thinking block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(*ThinkingBlock); ok {
			m.blockFocus = i
			break
		}
	}
	return m
}

// cycleFocusPrev moves focus to the previous thinking block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	n := len(m.blocks)
	for step := 1; step <= n; step++ {
		idx := ((m.blockFocus-step)%n + n) % n
		if _, ok := m.blocks[idx].(*ThinkingBlock); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.err != nil {
		return m.styles.Error.Render(runewidth.Truncate(fmt.Sprintf("Error: %v", m.err), width, "…"))
	}
	var s string
	if m.running {
		s = "Generating... Ctrl+C to cancel"
	} else {
		s = fmt.Sprintf("%s · %d/%d turns · Enter to send, Ctrl+C to quit", m.model, m.store.Len(), m.store.Limit())
		if m.model == "" {
			s = strings.TrimPrefix(s, " · ")
		}
	}
	return m.styles.Muted.Render(runewidth.Truncate(s, width, "…"))
}

// startTurn runs the turn on its own goroutine and delivers the result once
// all events have been sent.
func startTurn(ctx context.Context, run TurnFunc, history localchat.History, input string, eventCh chan<- localchat.Event, doneCh chan<- localchat.TurnResult) tea.Cmd {
	return func() tea.Msg {
		result := run(ctx, history, input, func(e localchat.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- result
		return nil
	}
}

// listenForEvent waits for the next event. When the channel closes it
// reads the turn result.
func listenForEvent(ch <-chan localchat.Event, doneCh <-chan localchat.TurnResult) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return TurnDoneMsg{Result: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
