package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
app:
  name: planloop
providers:
  openai:
    api_key: test-key
    model: gpt-4o-mini
    temperature: 0.2
    enabled: true
agent:
  max_replan_cycles: 25
  search_enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	name, p := cfg.GetDefaultProvider()
	if name != "openai" {
		t.Errorf("expected openai provider, got %q", name)
	}
	if p.Model != "gpt-4o-mini" || p.APIKey != "test-key" {
		t.Errorf("unexpected provider config: %+v", p)
	}
	if cfg.Agent.MaxReplanCycles != 25 {
		t.Errorf("expected max_replan_cycles 25, got %d", cfg.Agent.MaxReplanCycles)
	}
	if !cfg.Agent.SearchEnabled {
		t.Error("expected search_enabled true")
	}
	// Unset knobs fall back to defaults.
	if cfg.Agent.ExecutorMaxSteps != 10 {
		t.Errorf("expected default executor_max_steps 10, got %d", cfg.Agent.ExecutorMaxSteps)
	}
	if cfg.App.PromptDir != "./prompts" {
		t.Errorf("expected default prompt dir, got %q", cfg.App.PromptDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Agent.MaxReplanCycles != 50 {
		t.Errorf("expected default cap 50, got %d", cfg.Agent.MaxReplanCycles)
	}
	if name, _ := cfg.GetDefaultProvider(); name != "openai" {
		t.Errorf("expected openai default provider, got %q", name)
	}
}
