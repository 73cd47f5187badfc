package mock

import (
	"io"

	"github.com/fwojciec/localchat"
)

// Interface compliance check.
var _ localchat.Stream = (*Stream)(nil)

// Stream is a test double for localchat.Stream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe (no-op)
// because callers commonly defer stream.Close().
type Stream struct {
	NextFn  func() (localchat.Event, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (localchat.Event, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// TextStream returns a Stream that yields each fragment as an
// EventTextDelta, then err. A nil err ends the stream with io.EOF.
func TextStream(err error, fragments ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (localchat.Event, error) {
			if i < len(fragments) {
				f := fragments[i]
				i++
				return localchat.EventTextDelta{Delta: f}, nil
			}
			if err != nil {
				return nil, err
			}
			return nil, io.EOF
		},
	}
}
