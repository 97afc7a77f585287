package config

// ProcessingConfig defines how prompts are built and provider output is shaped.
type ProcessingConfig struct {
	// StrictProviderErrors surfaces provider failures as HTTP 500 instead of
	// embedding "Error: ..." in the 200 envelope (default: false)
	StrictProviderErrors bool `yaml:"strict_provider_errors"`

	// ResponseFormatting configures how responses should be formatted
	ResponseFormatting ResponseFormattingConfig `yaml:"response_formatting"`
}

// ResponseFormattingConfig defines response formatting options
type ResponseFormattingConfig struct {
	// TrimWhitespace removes leading and trailing whitespace from completions
	TrimWhitespace bool `yaml:"trim_whitespace"`

	// MaxLength limits the response length in bytes; 0 disables truncation
	MaxLength int `yaml:"max_length"`
}
