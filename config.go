package localchat

import "fmt"

// Defaults for a new session.
const (
	DefaultModel        = "gpt-oss:20b"
	DefaultSystemPrompt = "You are a helpful AI assistant running locally using Ollama."
	DefaultHistoryLimit = 10
)

// Config is the session configuration. It is built once at startup and not
// mutated afterwards; pass it by value.
type Config struct {
	Model        string
	SystemPrompt string
	HistoryLimit int      // turn pairs to retain; 0 disables memory
	Temperature  *float64 // nil = provider default
}

// DefaultConfig returns the configuration used when no flags or config file
// override it.
func DefaultConfig() Config {
	return Config{
		Model:        DefaultModel,
		SystemPrompt: DefaultSystemPrompt,
		HistoryLimit: DefaultHistoryLimit,
	}
}

// Validate checks the configuration before a session starts.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty: %w", ErrValidation)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must be non-negative, got %d: %w", c.HistoryLimit, ErrValidation)
	}
	if c.Temperature != nil {
		if err := validateTemperature(*c.Temperature); err != nil {
			return err
		}
	}
	return nil
}
