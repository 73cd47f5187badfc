package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/localchat"
	"github.com/fwojciec/localchat/gemini"
	"github.com/fwojciec/localchat/ollama"
)

const (
	providerOllama = "ollama"
	providerGemini = "gemini"

	geminiDefaultModel = gemini.DefaultModel
)

// resolveProvider constructs the completion provider and the hint function
// matching its errors.
func resolveProvider(ctx context.Context, s settings, logger *slog.Logger) (localchat.Provider, func(error) string, error) {
	switch s.provider {
	case providerOllama:
		client := ollama.New(
			ollama.WithBaseURL(s.host),
			ollama.WithLogger(logger),
		)
		return client, ollama.Hint, nil
	case providerGemini:
		if s.apiKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key flag or environment variable)")
		}
		client, err := gemini.New(ctx, s.apiKey, gemini.WithModel(s.config.Model))
		if err != nil {
			return nil, nil, err
		}
		return client, gemini.Hint, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q: must be %q or %q", s.provider, providerOllama, providerGemini)
	}
}

// checkProvider probes the model once before the session starts, when the
// provider supports it.
func checkProvider(ctx context.Context, p localchat.Provider, model string, hint func(error) string) error {
	checker, ok := p.(localchat.Checker)
	if !ok {
		return nil
	}
	if err := checker.Check(ctx, model); err != nil {
		if tip := hint(err); tip != "" {
			return fmt.Errorf("%w\nTip: %s", err, tip)
		}
		return err
	}
	return nil
}
