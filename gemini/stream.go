package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/localchat"
	"google.golang.org/genai"
)

type streamState int

const (
	stateStreaming streamState = iota
	stateDone
	stateError
	stateClosed
)

// stream implements [localchat.Stream] by wrapping the genai SDK's streaming
// iterator. One response chunk may carry several parts; their events are
// queued and handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   streamState
	err     error
	pending []localchat.Event
}

// Interface compliance check.
var _ localchat.Stream = (*stream)(nil)

func newStream(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		ctx:  ctx,
		pull: next,
		stop: stop,
	}
}

// Next returns the next fragment, or io.EOF once the iterator is exhausted.
func (s *stream) Next() (localchat.Event, error) {
	for {
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
			return nil, fmt.Errorf("gemini: %w", localchat.ErrStreamClosed)
		}

		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			continue
		}
		chunk, err, ok := s.pull()
		if !ok {
			s.state = stateDone
			continue
		}
		if err != nil {
			s.fail(err)
			continue
		}
		if err := s.process(chunk); err != nil {
			s.fail(err)
		}
	}
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	if s.state == stateStreaming {
		s.state = stateClosed
	}
	s.pending = nil
	s.stop()
	return nil
}

func (s *stream) fail(err error) {
	s.state = stateError
	s.err = fmt.Errorf("gemini: %w", err)
}

// process queues the events carried by one response chunk.
func (s *stream) process(chunk *genai.GenerateContentResponse) error {
	if chunk == nil {
		return nil
	}
	if len(chunk.Candidates) == 0 {
		if fb := chunk.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return fmt.Errorf("prompt blocked: %s", fb.BlockReason)
		}
		return nil
	}

	cand := chunk.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Text == "" {
				continue
			}
			if p.Thought {
				s.pending = append(s.pending, localchat.EventThinkingDelta{Delta: p.Text})
			} else {
				s.pending = append(s.pending, localchat.EventTextDelta{Delta: p.Text})
			}
		}
	}

	switch cand.FinishReason {
	case "", genai.FinishReasonStop, genai.FinishReasonMaxTokens, genai.FinishReasonUnspecified:
		return nil
	default:
		return fmt.Errorf("response stopped: %s", cand.FinishReason)
	}
}
