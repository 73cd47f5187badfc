package ollama_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/localchat"
	"github.com/fwojciec/localchat/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doneLine = `{"model":"m","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}` + "\n"

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(doneLine))
	}))
	defer srv.Close()

	temp := 0.3
	client := ollama.New(ollama.WithBaseURL(srv.URL))
	s, err := client.Stream(context.Background(), localchat.Request{
		Model:        "gpt-oss:20b",
		SystemPrompt: "You are helpful.",
		Messages: []localchat.Message{
			localchat.UserMessage("Hello"),
			localchat.AssistantMessage("Hi"),
			localchat.UserMessage("Thanks"),
		},
		Temperature: &temp,
	})
	require.NoError(t, err)
	defer s.Close()

	var body struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Options map[string]any `json:"options"`
	}
	require.NoError(t, json.Unmarshal(captured, &body))

	assert.Equal(t, "gpt-oss:20b", body.Model)
	assert.True(t, body.Stream)
	require.Len(t, body.Messages, 4)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "You are helpful.", body.Messages[0].Content)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, "assistant", body.Messages[2].Role)
	assert.Equal(t, "user", body.Messages[3].Role)
	assert.Equal(t, "Thanks", body.Messages[3].Content)
	assert.Equal(t, 0.3, body.Options["temperature"])
}

func TestClient_OmitsEmptySystemAndOptions(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(doneLine))
	}))
	defer srv.Close()

	s, err := ollama.New(ollama.WithBaseURL(srv.URL+"/")).Stream(context.Background(), localchat.Request{
		Model:    "m",
		Messages: []localchat.Message{localchat.UserMessage("hi")},
	})
	require.NoError(t, err)
	defer s.Close()

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.NotContains(t, captured, "options")
}

func TestClient_HTTPErrors(t *testing.T) {
	t.Parallel()

	t.Run("404 is model not found", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
		}))
		defer srv.Close()

		_, err := ollama.New(ollama.WithBaseURL(srv.URL)).Stream(context.Background(), localchat.Request{
			Model:    "nope",
			Messages: []localchat.Message{localchat.UserMessage("hi")},
		})
		require.ErrorIs(t, err, ollama.ErrModelNotFound)
		assert.Contains(t, err.Error(), "model 'nope' not found")
	})

	t.Run("other status keeps the server message", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"out of memory"}`))
		}))
		defer srv.Close()

		_, err := ollama.New(ollama.WithBaseURL(srv.URL)).Stream(context.Background(), localchat.Request{
			Model:    "m",
			Messages: []localchat.Message{localchat.UserMessage("hi")},
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ollama.ErrModelNotFound)
		assert.EqualError(t, err, "ollama: HTTP 500: out of memory")
	})

	t.Run("non JSON body is reported verbatim", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway\n"))
		}))
		defer srv.Close()

		_, err := ollama.New(ollama.WithBaseURL(srv.URL)).Stream(context.Background(), localchat.Request{
			Model:    "m",
			Messages: []localchat.Message{localchat.UserMessage("hi")},
		})
		assert.EqualError(t, err, "ollama: HTTP 502: bad gateway")
	})
}

func TestClient_NotRunning(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := ollama.New(ollama.WithBaseURL(url))
	_, err := client.Stream(context.Background(), localchat.Request{
		Model:    "m",
		Messages: []localchat.Message{localchat.UserMessage("hi")},
	})
	require.ErrorIs(t, err, ollama.ErrNotRunning)
	assert.ErrorIs(t, client.Check(context.Background(), "m"), ollama.ErrNotRunning)
}

func TestClient_CancelledContextIsNotClassified(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ollama.New(ollama.WithBaseURL(srv.URL)).Stream(ctx, localchat.Request{
		Model:    "m",
		Messages: []localchat.Message{localchat.UserMessage("hi")},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ollama.ErrNotRunning)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Check(t *testing.T) {
	t.Parallel()

	t.Run("installed model", func(t *testing.T) {
		t.Parallel()
		var gotModel string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/show", r.URL.Path)
			var body struct {
				Model string `json:"model"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			gotModel = body.Model
			_, _ = w.Write([]byte(`{"modelfile":"FROM x","details":{"family":"gpt-oss"}}`))
		}))
		defer srv.Close()

		require.NoError(t, ollama.New(ollama.WithBaseURL(srv.URL)).Check(context.Background(), "gpt-oss:20b"))
		assert.Equal(t, "gpt-oss:20b", gotModel)
	})

	t.Run("missing model", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'llama9' not found"}`))
		}))
		defer srv.Close()

		err := ollama.New(ollama.WithBaseURL(srv.URL)).Check(context.Background(), "llama9")
		require.ErrorIs(t, err, ollama.ErrModelNotFound)
		assert.Contains(t, err.Error(), `"llama9"`)
	})
}

func TestHint(t *testing.T) {
	t.Parallel()

	assert.Contains(t, ollama.Hint(ollama.ErrNotRunning), "ollama serve")
	assert.Contains(t, ollama.Hint(ollama.ErrModelNotFound), "ollama pull")
	generic := ollama.Hint(assert.AnError)
	assert.True(t, strings.HasPrefix(generic, "Ensure Ollama is running"))
	assert.Contains(t, generic, "pulled")
}
