package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/localchat"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1 << 20

type streamState int

const (
	stateStreaming streamState = iota
	stateDone
	stateError
	stateClosed
)

// stream implements [localchat.Stream] over an NDJSON response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	state   streamState
	err     error
	pending []localchat.Event
}

// Interface compliance check.
var _ localchat.Stream = (*stream)(nil)

func newStream(body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &stream{body: body, scanner: sc}
}

// Next returns the next fragment. It returns io.EOF after the line marked
// done, and an error if the body ends before that line arrives.
func (s *stream) Next() (localchat.Event, error) {
	if len(s.pending) > 0 {
		evt := s.pending[0]
		s.pending = s.pending[1:]
		return evt, nil
	}
	switch s.state {
	case stateDone:
		return nil, io.EOF
	case stateError:
		return nil, s.err
	case stateClosed:
		return nil, fmt.Errorf("ollama: %w", localchat.ErrStreamClosed)
	}

	for {
		line, err := s.readLine()
		if err != nil {
			s.fail(err)
			return nil, s.err
		}

		var chunk apiChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			s.fail(fmt.Errorf("ollama: decode stream: %w", err))
			return nil, s.err
		}
		if chunk.Error != "" {
			s.fail(fmt.Errorf("ollama: %s", chunk.Error))
			return nil, s.err
		}

		if chunk.Message.Thinking != "" {
			s.pending = append(s.pending, localchat.EventThinkingDelta{Delta: chunk.Message.Thinking})
		}
		if chunk.Message.Content != "" {
			s.pending = append(s.pending, localchat.EventTextDelta{Delta: chunk.Message.Content})
		}
		if chunk.Done {
			s.state = stateDone
		}

		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}
		if s.state == stateDone {
			return nil, io.EOF
		}
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state == stateStreaming {
		s.state = stateClosed
	}
	s.pending = nil
	return s.body.Close()
}

func (s *stream) fail(err error) {
	s.state = stateError
	s.err = err
}

// readLine returns the next non-blank line.
func (s *stream) readLine() ([]byte, error) {
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		return line, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return nil, errUnexpectedEOF
}

var errUnexpectedEOF = errors.New("ollama: unexpected end of stream")
