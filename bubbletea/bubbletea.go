// Package bubbletea provides a full-screen Bubble Tea frontend for a chat
// session. It runs the same turn protocol as the line-mode loop: one turn in
// flight, history committed only after a reply completes.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/localchat"
)

// TurnFunc runs one turn against the history snapshot and reports its
// outcome. onEvent is called for each streamed event. The signature matches
// [localchat.Executor.Execute].
type TurnFunc func(ctx context.Context, history localchat.History, input string, onEvent func(localchat.Event)) localchat.TurnResult

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a streaming event for delivery to the model.
type StreamEventMsg struct {
	Event localchat.Event
}

// TurnDoneMsg carries the outcome of a finished turn.
type TurnDoneMsg struct {
	Result localchat.TurnResult
}
