package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":8000" {
		t.Errorf("default listen addr is %q", cfg.Server.ListenAddr)
	}
	if cfg.DB.Path != "companion.db" {
		t.Errorf("default db path is %q", cfg.DB.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  listen_addr: ":9090"
db:
  path: /var/lib/companion/companion.db
llm:
  model: claude-sonnet-4-20250514
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen addr %q, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.DB.Path != "/var/lib/companion/companion.db" {
		t.Errorf("db path %q", cfg.DB.Path)
	}
	if cfg.LLM.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model %q", cfg.LLM.Model)
	}
	// Untouched fields keep their defaults.
	if cfg.PromptsDir != "prompts" {
		t.Errorf("prompts dir %q, want default", cfg.PromptsDir)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  api_key: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("COMPANION_LISTEN_ADDR", ":7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("api key %q, want env value", cfg.LLM.APIKey)
	}
	if cfg.Server.ListenAddr != ":7777" {
		t.Errorf("listen addr %q, want env value", cfg.Server.ListenAddr)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml must fail")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing api keys must fail validation")
	}
	cfg.LLM.APIKey = "sk-ant"
	cfg.OpenAI.APIKey = "sk-oai"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
