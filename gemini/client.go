package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/localchat"
	"google.golang.org/genai"
)

// Interface compliance checks.
var (
	_ localchat.Provider = (*Client)(nil)
	_ localchat.Checker  = (*Client)(nil)
)

// Client implements [localchat.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model used when a request does not name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  DefaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [localchat.Stream] yielding reply and thought fragments.
func (c *Client) Stream(ctx context.Context, req localchat.Request) (localchat.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	iter := c.client.Models.GenerateContentStream(ctx, model, ConvertMessages(req.Messages), buildConfig(req))
	return newStream(ctx, iter), nil
}

// Check verifies that the key is accepted and the model exists.
func (c *Client) Check(ctx context.Context, model string) error {
	if model == "" {
		model = c.model
	}
	if _, err := c.client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("gemini: model %q: %w", model, err)
	}
	return nil
}

// Hint returns a remediation tip shown after a failed turn.
func Hint(error) string {
	return "Check GEMINI_API_KEY (or --api-key) and that --model names a Gemini model."
}

func buildConfig(req localchat.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts localchat Messages to genai Contents. System
// messages are skipped; the system prompt travels in the request config.
// Exported for testing.
func ConvertMessages(msgs []localchat.Message) []*genai.Content {
	var result []*genai.Content
	for _, m := range msgs {
		var role string
		switch m.Role {
		case localchat.RoleUser:
			role = "user"
		case localchat.RoleAssistant:
			role = "model"
		default:
			continue
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return result
}
