package mock

import "github.com/fwojciec/localchat"

// Interface compliance checks.
var (
	_ localchat.LineReader = (*LineReader)(nil)
	_ localchat.Output     = (*Output)(nil)
)

// LineReader is a test double for localchat.LineReader.
// Set ReadLineFn before calling ReadLine.
type LineReader struct {
	ReadLineFn func(prompt string) (string, error)
}

// ReadLine delegates to ReadLineFn.
func (r *LineReader) ReadLine(prompt string) (string, error) {
	return r.ReadLineFn(prompt)
}

// Lines returns a LineReader that yields each line in turn and then
// localchat.ErrInputClosed.
func Lines(lines ...string) *LineReader {
	i := 0
	return &LineReader{
		ReadLineFn: func(string) (string, error) {
			if i >= len(lines) {
				return "", localchat.ErrInputClosed
			}
			line := lines[i]
			i++
			return line, nil
		},
	}
}

// Output is a test double for localchat.Output. Every field is nil-safe.
type Output struct {
	BeginReplyFn func()
	FragmentFn   func(text string)
	ThinkingFn   func(text string)
	EndReplyFn   func()
	StatusFn     func(msg string)
	ErrorFn      func(err error, hint string)
}

// BeginReply delegates to BeginReplyFn.
func (o *Output) BeginReply() {
	if o.BeginReplyFn != nil {
		o.BeginReplyFn()
	}
}

// Fragment delegates to FragmentFn.
func (o *Output) Fragment(text string) {
	if o.FragmentFn != nil {
		o.FragmentFn(text)
	}
}

// Thinking delegates to ThinkingFn.
func (o *Output) Thinking(text string) {
	if o.ThinkingFn != nil {
		o.ThinkingFn(text)
	}
}

// EndReply delegates to EndReplyFn.
func (o *Output) EndReply() {
	if o.EndReplyFn != nil {
		o.EndReplyFn()
	}
}

// Status delegates to StatusFn.
func (o *Output) Status(msg string) {
	if o.StatusFn != nil {
		o.StatusFn(msg)
	}
}

// Error delegates to ErrorFn.
func (o *Output) Error(err error, hint string) {
	if o.ErrorFn != nil {
		o.ErrorFn(err, hint)
	}
}
