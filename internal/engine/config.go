package engine

import "time"

// Config defines reasoning engine provider configuration.
type Config struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`

	// PromptsDir overrides the embedded prompt set when non-empty.
	PromptsDir string `mapstructure:"prompts_dir"`

	// Providers is a set of provider instances keyed by a user-defined id.
	Providers map[string]ProviderConfig `mapstructure:"providers"`

	// Routing maps a prompt slug to a provider id. Slugs without a route use
	// the default provider.
	Routing map[string]string `mapstructure:"routing"`
}

// ProviderConfig defines a configured provider instance.
type ProviderConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Driver is the provider type identifier ("openai" or "gemini").
	Driver string `mapstructure:"driver"`

	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}
