package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `yaml:"app"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Agent     AgentConfig               `yaml:"agent"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	PromptDir string `yaml:"prompt_dir"`
}

type ProviderConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature"`
	Enabled     bool    `yaml:"enabled"`
}

type AgentConfig struct {
	// MaxReplanCycles is the hard ceiling on execute/replan cycles per run.
	MaxReplanCycles int `yaml:"max_replan_cycles"`
	// ExecutorMaxSteps bounds the executor's internal reasoning loop per step.
	ExecutorMaxSteps int  `yaml:"executor_max_steps"`
	SearchEnabled    bool `yaml:"search_enabled"`
	// PageReaderEnabled registers the readability tool next to search.
	PageReaderEnabled bool `yaml:"page_reader_enabled"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:      "planloop",
			PromptDir: "./prompts",
		},
		Providers: map[string]ProviderConfig{
			"openai": {
				APIKey:      os.Getenv("OPENAI_API_KEY"),
				Model:       "gpt-4o-mini",
				Temperature: 0,
				Enabled:     true,
			},
		},
		Agent: AgentConfig{
			MaxReplanCycles:   50,
			ExecutorMaxSteps:  10,
			SearchEnabled:     false,
			PageReaderEnabled: false,
		},
	}
}

// Load reads a YAML config file, filling unset agent knobs with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Allow ${VAR} references for credentials so keys stay out of the file.
	for name, p := range cfg.Providers {
		p.APIKey = os.ExpandEnv(p.APIKey)
		cfg.Providers[name] = p
	}

	if cfg.App.Name == "" {
		cfg.App.Name = "planloop"
	}
	if cfg.App.PromptDir == "" {
		cfg.App.PromptDir = "./prompts"
	}
	if cfg.Agent.MaxReplanCycles == 0 {
		cfg.Agent.MaxReplanCycles = 50
	}
	if cfg.Agent.ExecutorMaxSteps == 0 {
		cfg.Agent.ExecutorMaxSteps = 10
	}
	return cfg, nil
}

// GetDefaultProvider returns the first enabled provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}
