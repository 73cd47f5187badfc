package localchat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Executor runs one conversational turn against a Provider. It never touches
// the Store: the caller commits a TurnCompleted result.
type Executor struct {
	provider Provider
	config   Config
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger. The default discards all records.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor for the given provider and session config.
func NewExecutor(provider Provider, config Config, opts ...ExecutorOption) *Executor {
	e := &Executor{
		provider: provider,
		config:   config,
		logger:   discardLogger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// IsExit reports whether input is a request to end the session: "exit" or
// "quit" in any letter case, ignoring surrounding whitespace.
func IsExit(input string) bool {
	s := strings.TrimSpace(input)
	return strings.EqualFold(s, "exit") || strings.EqualFold(s, "quit")
}

// Execute runs one turn. Empty input yields TurnSkipped and exit input yields
// TurnExit, both without calling the provider. Otherwise it streams the reply,
// passing every event to onEvent as it arrives, and returns TurnCompleted
// once the stream is exhausted or TurnFailed on any error. onEvent may be nil.
func (e *Executor) Execute(ctx context.Context, history History, input string, onEvent func(Event)) TurnResult {
	text := strings.TrimSpace(input)
	if text == "" {
		return TurnSkipped{}
	}
	if IsExit(text) {
		return TurnExit{}
	}

	req := NewRequest(e.config, history, text)
	if err := req.Validate(); err != nil {
		return TurnFailed{Err: err}
	}

	start := time.Now()
	e.logger.Debug("turn started", "model", req.Model, "messages", len(req.Messages))

	reply, err := e.stream(ctx, req, onEvent)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		e.logger.Warn("turn failed", "error", err, "partial_bytes", len(reply), "elapsed", time.Since(start))
		return TurnFailed{Err: err, Partial: reply}
	}

	e.logger.Debug("turn completed", "reply_bytes", len(reply), "elapsed", time.Since(start))
	return TurnCompleted{User: text, Reply: reply}
}

// stream drains the provider stream, forwarding events and accumulating the
// reply text. On error it returns whatever text was already forwarded.
func (e *Executor) stream(ctx context.Context, req Request, onEvent func(Event)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s, err := e.provider.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer s.Close()

	var reply strings.Builder
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			return reply.String(), nil
		}
		if err != nil {
			return reply.String(), err
		}
		if d, ok := evt.(EventTextDelta); ok {
			reply.WriteString(d.Delta)
		}
		if onEvent != nil {
			onEvent(evt)
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
