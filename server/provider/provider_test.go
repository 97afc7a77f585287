package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/server/mocks"
	"github.com/teilomillet/gollm"
)

func testProviderConfig() config.ProviderConfig {
	cfg := config.DefaultConfig().Provider
	cfg.APIKey = "test-key"
	return cfg
}

func TestLLMCompleterSendsPromptAsUserMessage(t *testing.T) {
	var got *gollm.Prompt
	mock := mocks.NewMockLLM(func(ctx context.Context, p *gollm.Prompt) (string, error) {
		got = p
		return "  generated text \n", nil
	})

	c, err := NewLLMCompleterWithLLM(testProviderConfig(), mock)
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "You are a helpful assistant. hi")
	require.NoError(t, err)
	assert.Equal(t, "  generated text \n", text, "trimming belongs to the caller")

	require.NotNil(t, got)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "You are a helpful assistant. hi", got.Messages[0].Content)
}

func TestLLMCompleterAppliesGenerationSettings(t *testing.T) {
	mock := mocks.NewMockLLM(nil)
	cfg := testProviderConfig()
	cfg.MaxTokens = 42
	cfg.Temperature = 0.3

	c, err := NewLLMCompleterWithLLM(cfg, mock)
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())

	v, ok := mock.Option("max_tokens")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok = mock.Option("temperature")
	require.True(t, ok)
	assert.Equal(t, 0.3, v)

	assert.Empty(t, mock.OllamaEndpoint())
}

func TestLLMCompleterOllamaEndpoint(t *testing.T) {
	mock := mocks.NewMockLLM(nil)
	cfg := testProviderConfig()
	cfg.Name = "ollama"
	cfg.Endpoint = "http://localhost:11434"

	_, err := NewLLMCompleterWithLLM(cfg, mock)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", mock.OllamaEndpoint())
}

func TestLLMCompleterRequiresLLM(t *testing.T) {
	_, err := NewLLMCompleterWithLLM(testProviderConfig(), nil)
	assert.Error(t, err)
}

func TestLLMCompleterWrapsProviderError(t *testing.T) {
	upstream := errors.New("connection refused")
	mock := mocks.NewMockLLM(func(ctx context.Context, p *gollm.Prompt) (string, error) {
		return "", upstream
	})

	c, err := NewLLMCompleterWithLLM(testProviderConfig(), mock)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCompleterFunc(t *testing.T) {
	var c Completer = CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})

	text, err := c.Complete(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "echo: ping", text)
}

func TestResolveAPIKey(t *testing.T) {
	cfg := testProviderConfig()
	key, err := resolveAPIKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, "test-key", key)

	cfg.APIKey = ""
	t.Setenv("OPENAI_API_KEY", "from-env")
	key, err = resolveAPIKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	t.Setenv("OPENAI_API_KEY", "")
	_, err = resolveAPIKey(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg.Name = "ollama"
	key, err = resolveAPIKey(cfg)
	require.NoError(t, err)
	assert.Empty(t, key)
}
