// Package ollama implements [localchat.Provider] for a local Ollama server.
//
// Requests go to the /api/chat endpoint with streaming enabled. The server
// answers with newline-delimited JSON: one object per fragment, the last one
// carrying "done": true. The pull-based [localchat.Stream] decodes one line
// per call to Next.
package ollama

const (
	// DefaultHost is where a stock Ollama install listens.
	DefaultHost = "http://127.0.0.1:11434"

	chatPath = "/api/chat"
	showPath = "/api/show"
)

// apiRequest is the JSON body sent to /api/chat.
type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  *apiOptions  `json:"options,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// apiChatResponse is one NDJSON line of a streaming /api/chat response.
// Error is set instead of Message when the server fails mid-stream.
type apiChatResponse struct {
	Model      string          `json:"model"`
	Message    apiReplyMessage `json:"message"`
	Done       bool            `json:"done"`
	DoneReason string          `json:"done_reason,omitempty"`
	Error      string          `json:"error,omitempty"`

	EvalCount     int   `json:"eval_count,omitempty"`
	TotalDuration int64 `json:"total_duration,omitempty"`
}

type apiReplyMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Thinking string `json:"thinking,omitempty"`
}

type apiShowRequest struct {
	Model string `json:"model"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Error string `json:"error"`
}
