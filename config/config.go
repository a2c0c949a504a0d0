// Package config loads service configuration from an optional YAML file
// with environment-variable overrides for secrets and deploy-specific
// settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	LLM    LLMConfig    `yaml:"llm"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Memory MemoryConfig `yaml:"memory"`

	// PromptsDir holds the Korean prompt asset files. Missing files fall
	// back to built-in defaults.
	PromptsDir string `yaml:"prompts_dir"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DBConfig configures the relational store.
type DBConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig configures the chat completion provider.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig configures transcription and embeddings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// MemoryConfig configures the vector index.
type MemoryConfig struct {
	// Path persists the index on disk; empty keeps it in memory only.
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:     ServerConfig{ListenAddr: ":8000"},
		DB:         DBConfig{Path: "companion.db"},
		LLM:        LLMConfig{Model: "claude-3-5-haiku-latest"},
		Memory:     MemoryConfig{Path: "memory_index"},
		PromptsDir: "prompts",
	}
}

// Load reads the YAML file at path, layering it over the defaults and
// applying environment overrides last. A missing file is not an error;
// the defaults plus environment are used.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults plus environment.
	case err != nil:
		return cfg, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Secrets are
// expected to arrive this way in deployment.
func (c *Config) applyEnv() {
	setString(&c.Server.ListenAddr, "COMPANION_LISTEN_ADDR")
	setString(&c.DB.Path, "COMPANION_DB_PATH")
	setString(&c.PromptsDir, "COMPANION_PROMPTS_DIR")
	setString(&c.Memory.Path, "COMPANION_MEMORY_PATH")
	setString(&c.LLM.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.LLM.Model, "ANTHROPIC_MODEL")
	setString(&c.LLM.BaseURL, "ANTHROPIC_BASE_URL")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports the configuration problems that prevent startup.
func (c Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key (or ANTHROPIC_API_KEY) is required")
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("openai.api_key (or OPENAI_API_KEY) is required")
	}
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr is required")
	}
	return nil
}
