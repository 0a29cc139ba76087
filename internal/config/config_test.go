package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  api_key: sk-ant-test-key-12345678
tracker:
  base_url: https://tracker.example.com
  timeout: 5s
agents:
  max: 5
  backend: api
  task_level: true
  done_status_id: status-42
git:
  base_branch: develop
post_feature_hooks:
  barney_audit:
    enabled: true
    script: /usr/local/bin/audit
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-test-key-12345678" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Tracker.BaseURL != "https://tracker.example.com" {
		t.Errorf("tracker url = %q", cfg.Tracker.BaseURL)
	}
	if cfg.Tracker.Timeout != 5*time.Second {
		t.Errorf("tracker timeout = %v", cfg.Tracker.Timeout)
	}
	if cfg.Agents.Max != 5 || cfg.Agents.Backend != "api" || !cfg.Agents.TaskLevel {
		t.Errorf("agents = %+v", cfg.Agents)
	}
	if cfg.Agents.DoneStatusID != "status-42" {
		t.Errorf("done status = %q", cfg.Agents.DoneStatusID)
	}
	if cfg.Git.BaseBranch != "develop" {
		t.Errorf("base branch = %q", cfg.Git.BaseBranch)
	}
	if !cfg.Hooks.BarneyAudit.Enabled || cfg.Hooks.BarneyAudit.Script != "/usr/local/bin/audit" {
		t.Errorf("hooks = %+v", cfg.Hooks)
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "anthropic:\n  api_key: ''\n"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Agents.Max != 3 {
		t.Errorf("default agents.max = %d, want 3", cfg.Agents.Max)
	}
	if cfg.Agents.Backend != "cli" {
		t.Errorf("default backend = %q", cfg.Agents.Backend)
	}
	if cfg.Agents.DoneStatusID != "done" {
		t.Errorf("default done status = %q", cfg.Agents.DoneStatusID)
	}
	if cfg.Tracker.Timeout != 10*time.Second {
		t.Errorf("default tracker timeout = %v", cfg.Tracker.Timeout)
	}
	if cfg.Hooks.BarneyAudit.Enabled {
		t.Error("hooks should default to disabled")
	}
}

func TestLoadFromPathExpandsEnv(t *testing.T) {
	t.Setenv("TEST_STRIDE_KEY", "sk-ant-from-env-12345678")
	cfg, err := LoadFromPath(writeConfig(t, "anthropic:\n  api_key: ${TEST_STRIDE_KEY}\n"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env-12345678" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Agents.Max != 3 || cfg.Agents.Backend != "cli" {
		t.Errorf("agents = %+v", cfg.Agents)
	}
	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("refresh rate = %v", cfg.TUI.RefreshRate)
	}
}
