package mocks

import (
	"context"
	"sync"

	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"
	"github.com/teilomillet/gollm/utils"
)

// MockLLM is a gollm.LLM that never leaves the process. Generate delegates
// to GenerateFunc, and options set on the mock are recorded so tests can
// check how a client was configured.
type MockLLM struct {
	GenerateFunc func(context.Context, *gollm.Prompt) (string, error)
	Provider     string
	Model        string

	mu             sync.Mutex
	options        map[string]interface{}
	ollamaEndpoint string
}

// NewMockLLM creates a MockLLM. A nil generateFunc makes Generate return "".
func NewMockLLM(generateFunc func(context.Context, *gollm.Prompt) (string, error)) *MockLLM {
	return &MockLLM{
		GenerateFunc: generateFunc,
		Provider:     "mock",
		Model:        "mock-model",
		options:      make(map[string]interface{}),
	}
}

// Option returns a value previously passed to SetOption.
func (m *MockLLM) Option(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.options[key]
	return v, ok
}

// OllamaEndpoint returns the endpoint passed to SetOllamaEndpoint.
func (m *MockLLM) OllamaEndpoint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ollamaEndpoint
}

func (m *MockLLM) Generate(ctx context.Context, prompt *gollm.Prompt, opts ...llm.GenerateOption) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

func (m *MockLLM) GenerateWithSchema(ctx context.Context, prompt *gollm.Prompt, schema interface{}, opts ...llm.GenerateOption) (string, error) {
	return m.Generate(ctx, prompt)
}

func (m *MockLLM) SetOption(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[key] = value
}

func (m *MockLLM) SetOllamaEndpoint(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ollamaEndpoint = endpoint
	return nil
}

func (m *MockLLM) NewPrompt(text string) *gollm.Prompt {
	return &gollm.Prompt{
		Messages: []gollm.PromptMessage{
			{Role: "user", Content: text},
		},
	}
}

func (m *MockLLM) Debug(format string, args ...interface{}) {}
func (m *MockLLM) GetPromptJSONSchema(opts ...gollm.SchemaOption) ([]byte, error) { return []byte(`{}`), nil }
func (m *MockLLM) GetProvider() string { return m.Provider }
func (m *MockLLM) GetModel() string { return m.Model }
func (m *MockLLM) GetLogLevel() gollm.LogLevel { return gollm.LogLevelInfo }
func (m *MockLLM) UpdateLogLevel(level gollm.LogLevel) {}
func (m *MockLLM) SetLogLevel(level gollm.LogLevel) {}
func (m *MockLLM) GetLogger() utils.Logger { return nil }
func (m *MockLLM) SetEndpoint(endpoint string) {}
func (m *MockLLM) SupportsJSONSchema() bool { return false }
func (m *MockLLM) SetSystemPrompt(prompt string, cacheType llm.CacheType) {}
