package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/localchat"
)

// Interface compliance checks.
var (
	_ localchat.Provider = (*Client)(nil)
	_ localchat.Checker  = (*Client)(nil)
)

var (
	// ErrNotRunning means the server could not be reached.
	ErrNotRunning = errors.New("ollama: server not reachable")

	// ErrModelNotFound means the server does not have the requested model.
	ErrModelNotFound = errors.New("ollama: model not found")
)

// Client implements [localchat.Provider] for the Ollama chat API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the server base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] talking to [DefaultHost] unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultHost,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming chat request and returns a [localchat.Stream]
// yielding the reply fragments.
func (c *Client) Stream(ctx context.Context, req localchat.Request) (localchat.Stream, error) {
	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	resp, err := c.post(ctx, chatPath, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp, req.Model)
	}

	c.logger.Debug("ollama stream opened", "model", req.Model, "messages", len(req.Messages))
	return newStream(resp.Body), nil
}

// Check verifies that the server is reachable and has the model installed.
func (c *Client) Check(ctx context.Context, model string) error {
	body, err := json.Marshal(apiShowRequest{Model: model})
	if err != nil {
		return fmt.Errorf("ollama: %w", err)
	}

	resp, err := c.post(ctx, showPath, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp, model)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ollama: %w", err)
		}
		return nil, fmt.Errorf("%w at %s: %w", ErrNotRunning, c.baseURL, err)
	}
	return resp, nil
}

func buildRequest(req localchat.Request) apiRequest {
	msgs := make([]apiMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, apiMessage{Role: string(localchat.RoleSystem), Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, apiMessage{Role: string(m.Role), Content: m.Content})
	}

	apiReq := apiRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   true,
	}
	if req.Temperature != nil {
		apiReq.Options = &apiOptions{Temperature: req.Temperature}
	}
	return apiReq
}

func parseHTTPError(resp *http.Response, model string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ollama: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	msg := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %q: %s", ErrModelNotFound, model, msg)
	}
	return fmt.Errorf("ollama: HTTP %d: %s", resp.StatusCode, msg)
}

// Hint returns a remediation tip for err, or a generic one when err is not
// classified.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrNotRunning):
		return "Ensure Ollama is running (`ollama serve`) and --host points at it."
	case errors.Is(err, ErrModelNotFound):
		return "Pull the model first (`ollama pull <model>`) or pick another with --model."
	default:
		return "Ensure Ollama is running (`ollama serve`) and the model is pulled."
	}
}
