// Package liner implements [localchat.LineReader] on top of
// github.com/peterh/liner, adding line editing and a persisted input history.
package liner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/localchat"
	"github.com/peterh/liner"
)

// Interface compliance check.
var _ localchat.LineReader = (*Reader)(nil)

// state is the subset of *liner.State used by Reader.
type state interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
	Close() error
}

// Reader reads user input one line at a time. Ctrl+C at the prompt and
// Ctrl+D both end the input.
type Reader struct {
	state       state
	historyPath string
	logger      *slog.Logger
}

// Option configures a [Reader].
type Option func(*Reader)

// WithHistoryFile loads input history from path and writes it back on Close.
func WithHistoryFile(path string) Option {
	return func(r *Reader) { r.historyPath = path }
}

// WithLogger sets the logger used to report an unusable history file.
// The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// New puts the terminal into line-editing mode and returns a Reader.
// Callers must Close it to restore the terminal.
func New(opts ...Option) *Reader {
	s := liner.NewLiner()
	s.SetCtrlCAborts(true)
	return newReader(s, opts...)
}

func newReader(s state, opts ...Option) *Reader {
	r := &Reader{
		state:  s,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(r)
	}
	r.loadHistory()
	return r
}

// ReadLine prints prompt and returns the next line without its terminator.
func (r *Reader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", fmt.Errorf("liner: %w", localchat.ErrInputClosed)
	}
	if err != nil {
		return "", fmt.Errorf("liner: %w", err)
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves the input history, if configured, and restores the terminal.
func (r *Reader) Close() error {
	saveErr := r.saveHistory()
	if err := r.state.Close(); err != nil {
		return fmt.Errorf("liner: %w", err)
	}
	return saveErr
}

func (r *Reader) loadHistory() {
	if r.historyPath == "" {
		return
	}
	f, err := os.Open(r.historyPath)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		r.logger.Warn("input history not loaded", "path", r.historyPath, "error", err)
		return
	}
	defer f.Close()
	if _, err := r.state.ReadHistory(f); err != nil {
		r.logger.Warn("input history not loaded", "path", r.historyPath, "error", err)
	}
}

func (r *Reader) saveHistory() error {
	if r.historyPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o700); err != nil {
		return fmt.Errorf("liner: save history: %w", err)
	}
	f, err := os.OpenFile(r.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("liner: save history: %w", err)
	}
	defer f.Close()
	if _, err := r.state.WriteHistory(f); err != nil {
		return fmt.Errorf("liner: save history: %w", err)
	}
	return nil
}
