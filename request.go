package localchat

import "fmt"

// Request is a single completion request: the system instruction, the
// flattened history and the new user message last. It is built per turn and
// never persisted.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	Temperature  *float64 // nil = provider default
}

// NewRequest assembles the request for one turn.
func NewRequest(cfg Config, history History, userText string) Request {
	msgs := append(history.Messages(), UserMessage(userText))
	return Request{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Messages:     msgs,
		Temperature:  cfg.Temperature,
	}
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if err := validateTemperature(*r.Temperature); err != nil {
			return err
		}
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages: %w", ErrValidation)
	}
	if last := r.Messages[len(r.Messages)-1]; last.Role != RoleUser {
		return fmt.Errorf("last message must be from %s, got %s: %w", RoleUser, last.Role, ErrValidation)
	}
	return nil
}

func validateTemperature(t float64) error {
	if t < 0 || t > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", t, ErrValidation)
	}
	return nil
}
