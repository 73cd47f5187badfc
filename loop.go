package localchat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Prompt is printed before each line of user input.
const Prompt = "You: "

// LineReader reads one line of user input. It returns ErrInputClosed (possibly
// wrapped) when the input ends or the user aborts at the prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Output renders a line-mode conversation.
//
// BeginReply is called when a turn is about to reach the provider, before
// any text arrives. Fragment and Thinking receive streamed text as it
// arrives, with no added separators. EndReply terminates a completed reply with a single newline.
// Error reports a failed turn; hint may be empty. Status prints an
// informational line.
type Output interface {
	BeginReply()
	Fragment(text string)
	Thinking(text string)
	EndReply()
	Status(msg string)
	Error(err error, hint string)
}

// Loop drives the read -> execute -> commit cycle for line-mode sessions.
// Turns run one at a time; the history is only modified between turns.
type Loop struct {
	reader   LineReader
	out      Output
	executor *Executor
	store    *Store
	hint     func(error) string
	onCommit func(Turn)
	logger   *slog.Logger

	mu         sync.Mutex
	cancelTurn context.CancelFunc
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithHint sets the function producing the remediation hint shown after a
// failed turn. It is not consulted for interrupted turns.
func WithHint(fn func(error) string) LoopOption {
	return func(l *Loop) { l.hint = fn }
}

// WithCommitHook sets a callback invoked after each turn is committed.
func WithCommitHook(fn func(Turn)) LoopOption {
	return func(l *Loop) { l.onCommit = fn }
}

// WithLoopLogger sets the logger. The default discards all records.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop creates a Loop reading from reader, writing to out, running turns
// through executor and committing them into store.
func NewLoop(reader LineReader, out Output, executor *Executor, store *Store, opts ...LoopOption) *Loop {
	l := &Loop{
		reader:   reader,
		out:      out,
		executor: executor,
		store:    store,
		logger:   discardLogger(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run reads and executes turns until the user exits, the input ends, or ctx
// is cancelled while waiting for input. A failed turn is reported and the
// loop continues. Run returns an error only when the reader fails for a
// reason other than the input ending.
func (l *Loop) Run(ctx context.Context) error {
	for {
		line, err := l.readLine(ctx)
		if errors.Is(err, ErrInputClosed) {
			l.out.Status("Exiting...")
			return nil
		}
		if err != nil {
			return err
		}

		switch r := l.turn(ctx, line).(type) {
		case TurnSkipped:
			continue
		case TurnExit:
			l.out.Status("Goodbye!")
			return nil
		case TurnCompleted:
			l.out.EndReply()
			t := l.store.Commit(r.User, r.Reply)
			l.logger.Debug("turn committed", "history", l.store.Len(), "limit", l.store.Limit())
			if l.onCommit != nil {
				l.onCommit(t)
			}
		case TurnFailed:
			l.out.Error(r.Err, l.hintFor(r.Err))
		}
	}
}

// Interrupt cancels the in-flight turn. It reports whether a turn was
// running; when it returns false the caller may treat the interrupt as a
// request to end the session.
func (l *Loop) Interrupt() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancelTurn == nil {
		return false
	}
	l.cancelTurn()
	l.cancelTurn = nil
	return true
}

func (l *Loop) turn(ctx context.Context, line string) TurnResult {
	turnCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancelTurn = cancel
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.cancelTurn = nil
		l.mu.Unlock()
		cancel()
	}()

	if text := strings.TrimSpace(line); text != "" && !IsExit(text) {
		l.out.BeginReply()
	}
	return l.executor.Execute(turnCtx, l.store.Snapshot(), line, l.forward)
}

func (l *Loop) forward(evt Event) {
	switch e := evt.(type) {
	case EventTextDelta:
		l.out.Fragment(e.Delta)
	case EventThinkingDelta:
		l.out.Thinking(e.Delta)
	}
}

func (l *Loop) hintFor(err error) string {
	if l.hint == nil || errors.Is(err, ErrInterrupted) {
		return ""
	}
	return l.hint(err)
}

// readLine waits for the next input line. The read happens on its own
// goroutine so that cancelling ctx ends the wait; the abandoned read is left
// to finish when the process exits.
func (l *Loop) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := l.reader.ReadLine(Prompt)
		ch <- result{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ErrInputClosed
	case r := <-ch:
		return r.line, r.err
	}
}
