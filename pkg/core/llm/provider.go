package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the interface every model backend implements. options is a
// per-call bag for model name, temperature and backend-specific knobs.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// NewProvider resolves a provider by name. Names are case-insensitive;
// the empty string selects Gemini.
func NewProvider(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "gemini":
		return &GeminiProvider{}, nil
	case "deepseek":
		return &DeepSeekProvider{}, nil
	case "qwen":
		return &QwenProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
