package providers

import (
	"context"
	"fmt"
)

// Prompt contains the text sent to a generation model.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion contains the model's reply.
type Completion struct {
	Text       string
	TokensUsed int
}

// Generator is the hosted text-generation abstraction.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (Completion, error)
	Name() string
}

// DefaultProvider and DefaultModel select Cloudflare Workers AI running Llama 3.1.
const (
	DefaultProvider = "workersai"
	DefaultModel    = "@cf/meta/llama-3.1-8b-instruct-fp8"
)

// New creates a generator by provider name.
func New(provider, model string) (Generator, error) {
	switch provider {
	case "workersai", "cloudflare":
		return NewWorkersAI(model)
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func maxTokensOr(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}
