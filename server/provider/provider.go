// Package provider connects the gateway to the external text-completion
// provider. The rest of the gateway only sees the Completer interface;
// gollm, the circuit breaker and instrumentation are layered behind it.
package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/gollm"
)

// Completer turns a prompt into generated text.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f(ctx, prompt).
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// LLMCompleter sends prompts to a gollm.LLM. Generation parameters are fixed
// when the client is built and the client is never reconfigured afterwards,
// so one instance is shared by all requests.
type LLMCompleter struct {
	name string
	llm  gollm.LLM
}

// NewLLMCompleter builds a gollm client from cfg. When cfg.APIKey is empty
// the key is read once from <NAME>_API_KEY (e.g. OPENAI_API_KEY); ollama
// needs no key.
func NewLLMCompleter(cfg config.ProviderConfig) (*LLMCompleter, error) {
	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	llm, err := gollm.NewLLM(
		gollm.SetProvider(cfg.Name),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(apiKey),
		gollm.SetMaxTokens(cfg.MaxTokens),
		gollm.SetMaxRetries(cfg.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("create LLM for provider %s: %w", cfg.Name, err)
	}

	return NewLLMCompleterWithLLM(cfg, llm)
}

// NewLLMCompleterWithLLM wraps an existing gollm.LLM and applies the
// generation settings of cfg to it. Tests use it with a mock LLM.
func NewLLMCompleterWithLLM(cfg config.ProviderConfig, llm gollm.LLM) (*LLMCompleter, error) {
	if llm == nil {
		return nil, fmt.Errorf("LLM instance is required")
	}

	if cfg.Endpoint != "" && cfg.Name == "ollama" {
		if err := llm.SetOllamaEndpoint(cfg.Endpoint); err != nil {
			return nil, fmt.Errorf("set ollama endpoint: %w", err)
		}
	}
	llm.SetOption("max_tokens", cfg.MaxTokens)
	llm.SetOption("temperature", cfg.Temperature)

	return &LLMCompleter{name: cfg.Name, llm: llm}, nil
}

// Name returns the provider name used in logs and metric labels.
func (c *LLMCompleter) Name() string {
	return c.name
}

// Complete sends prompt as a single user message.
func (c *LLMCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	p := &gollm.Prompt{
		Messages: []gollm.PromptMessage{
			{Role: "user", Content: prompt},
		},
	}

	text, err := c.llm.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.name, err)
	}
	return text, nil
}

func resolveAPIKey(cfg config.ProviderConfig) (string, error) {
	if cfg.APIKey != "" || cfg.Name == "ollama" {
		return cfg.APIKey, nil
	}

	envVar := strings.ToUpper(cfg.Name) + "_API_KEY"
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key for provider %s: set provider.api_key or %s", cfg.Name, envVar)
}
