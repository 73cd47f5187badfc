package ollama_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/localchat"
	"github.com/fwojciec/localchat/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ndjson serves each line in order, flushing after every line.
func ndjson(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, l := range lines {
			fmt.Fprintln(w, l)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func chunk(content string) string {
	return fmt.Sprintf(`{"model":"m","message":{"role":"assistant","content":%q},"done":false}`, content)
}

func streamFrom(t *testing.T, h http.HandlerFunc) localchat.Stream {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := ollama.New(ollama.WithBaseURL(srv.URL)).Stream(context.Background(), localchat.Request{
		Model:    "m",
		Messages: []localchat.Message{localchat.UserMessage("hi")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// drain collects events until the stream ends and returns the final error.
func drain(s localchat.Stream) ([]localchat.Event, error) {
	var events []localchat.Event
	for {
		evt, err := s.Next()
		if err != nil {
			return events, err
		}
		events = append(events, evt)
	}
}

func TestStream_Fragments(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, ndjson(chunk("Hel"), chunk("lo"), chunk(", world"), `{"model":"m","message":{"role":"assistant","content":""},"done":true,"eval_count":3}`))

	events, err := drain(s)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []localchat.Event{
		localchat.EventTextDelta{Delta: "Hel"},
		localchat.EventTextDelta{Delta: "lo"},
		localchat.EventTextDelta{Delta: ", world"},
	}, events)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_ContentOnDoneLine(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, ndjson(chunk("a"), `{"message":{"role":"assistant","content":"b"},"done":true}`))

	events, err := drain(s)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []localchat.Event{
		localchat.EventTextDelta{Delta: "a"},
		localchat.EventTextDelta{Delta: "b"},
	}, events)
}

func TestStream_Thinking(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, ndjson(
		`{"message":{"role":"assistant","content":"","thinking":"User greets."},"done":false}`,
		`{"message":{"role":"assistant","content":"","thinking":" Reply."},"done":false}`,
		chunk("Hi!"),
		`{"message":{"role":"assistant","content":""},"done":true}`,
	))

	events, err := drain(s)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []localchat.Event{
		localchat.EventThinkingDelta{Delta: "User greets."},
		localchat.EventThinkingDelta{Delta: " Reply."},
		localchat.EventTextDelta{Delta: "Hi!"},
	}, events)
}

func TestStream_SkipsBlankLinesAndEmptyChunks(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, ndjson(chunk(""), "", "  ", chunk("x"), `{"done":true}`))

	events, err := drain(s)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []localchat.Event{localchat.EventTextDelta{Delta: "x"}}, events)
}

func TestStream_Failures(t *testing.T) {
	t.Parallel()

	t.Run("error line after fragments", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, ndjson(chunk("Hel"), chunk("lo"), `{"error":"model runner has unexpectedly stopped"}`))

		events, err := drain(s)
		require.Error(t, err)
		assert.NotErrorIs(t, err, io.EOF)
		assert.EqualError(t, err, "ollama: model runner has unexpectedly stopped")
		assert.Len(t, events, 2)

		_, again := s.Next()
		assert.Equal(t, err, again)
	})

	t.Run("body ends before done", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, ndjson(chunk("partial")))

		events, err := drain(s)
		require.Error(t, err)
		assert.NotErrorIs(t, err, io.EOF)
		assert.Contains(t, err.Error(), "unexpected end of stream")
		assert.Equal(t, []localchat.Event{localchat.EventTextDelta{Delta: "partial"}}, events)
	})

	t.Run("malformed line", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, ndjson(chunk("ok"), `{not json`))

		_, err := drain(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ollama: decode stream")
	})
}

func TestStream_Close(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, ndjson(chunk("a"), chunk("b"), `{"done":true}`))
	_, err := s.Next()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Next()
	assert.ErrorIs(t, err, localchat.ErrStreamClosed)
}
