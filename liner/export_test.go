package liner

import "io"

// State mirrors the unexported state interface for test doubles.
type State interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
	Close() error
}

// NewWithState builds a Reader over a fake line editor.
func NewWithState(s State, opts ...Option) *Reader {
	return newReader(s, opts...)
}
