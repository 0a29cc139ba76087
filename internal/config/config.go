// Package config handles configuration loading and management for Stride.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/stride-cli/stride/internal/orchestrator"
)

// Config holds all configuration for Stride.
type Config struct {
	Anthropic AnthropicConfig               `mapstructure:"anthropic"`
	Bedrock   BedrockConfig                 `mapstructure:"bedrock"`
	Tracker   TrackerConfig                 `mapstructure:"tracker"`
	Agents    AgentsConfig                  `mapstructure:"agents"`
	Git       GitConfig                     `mapstructure:"git"`
	TUI       TUIConfig                     `mapstructure:"tui"`
	Hooks     orchestrator.PostFeatureHooks `mapstructure:"post_feature_hooks"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// BedrockConfig routes API-backend agents through AWS Bedrock.
type BedrockConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// TrackerConfig holds settings for the external tracking platform.
type TrackerConfig struct {
	// BaseURL is the platform's API root. Empty disables tracking.
	BaseURL string `mapstructure:"base_url"`
	// APIKey authenticates tracking calls.
	APIKey string `mapstructure:"api_key"`
	// Timeout bounds each tracking request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// AgentsConfig holds agent pool and backend settings.
type AgentsConfig struct {
	// Max is the maximum number of concurrent agents.
	Max int `mapstructure:"max"`
	// Backend selects how agents run: "cli" or "api".
	Backend string `mapstructure:"backend"`
	// Model is the model passed to the agent backend. Empty uses the
	// backend's default.
	Model string `mapstructure:"model"`
	// RunTimeout bounds a single agent's run. Zero means no timeout.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
	// TaskLevel fans eligible features out into per-task agents.
	TaskLevel bool `mapstructure:"task_level"`
	// DoneStatusID is the platform status written to a feature when all
	// its task agents succeed.
	DoneStatusID string `mapstructure:"done_status_id"`
}

// GitConfig holds branch settings.
type GitConfig struct {
	// BaseBranch overrides the branch work branches are cut from. Empty
	// uses the repository's default branch.
	BaseBranch string `mapstructure:"base_branch"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, STRIDE_TRACKER_API_KEY)
// 2. Project config (.stride.yaml in current directory or parent)
// 3. User config (~/.config/stride/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("tracker.api_key", "STRIDE_TRACKER_API_KEY")
	v.BindEnv("tracker.base_url", "STRIDE_TRACKER_URL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.Tracker.APIKey = os.ExpandEnv(cfg.Tracker.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.Tracker.APIKey = os.ExpandEnv(cfg.Tracker.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("bedrock.enabled", cfg.Bedrock.Enabled)
	v.Set("bedrock.region", cfg.Bedrock.Region)
	v.Set("bedrock.profile", cfg.Bedrock.Profile)
	v.Set("tracker.base_url", cfg.Tracker.BaseURL)
	v.Set("tracker.api_key", cfg.Tracker.APIKey)
	v.Set("tracker.timeout", cfg.Tracker.Timeout.String())
	v.Set("agents.max", cfg.Agents.Max)
	v.Set("agents.backend", cfg.Agents.Backend)
	v.Set("agents.model", cfg.Agents.Model)
	v.Set("agents.run_timeout", cfg.Agents.RunTimeout.String())
	v.Set("agents.task_level", cfg.Agents.TaskLevel)
	v.Set("agents.done_status_id", cfg.Agents.DoneStatusID)
	v.Set("git.base_branch", cfg.Git.BaseBranch)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())
	v.Set("post_feature_hooks.barney_audit.enabled", cfg.Hooks.BarneyAudit.Enabled)
	v.Set("post_feature_hooks.barney_audit.script", cfg.Hooks.BarneyAudit.Script)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")

	v.SetDefault("bedrock.enabled", false)
	v.SetDefault("bedrock.region", "")
	v.SetDefault("bedrock.profile", "")

	v.SetDefault("tracker.base_url", "")
	v.SetDefault("tracker.api_key", "")
	v.SetDefault("tracker.timeout", "10s")

	v.SetDefault("agents.max", 3)
	v.SetDefault("agents.backend", "cli")
	v.SetDefault("agents.model", "")
	v.SetDefault("agents.run_timeout", "15m")
	v.SetDefault("agents.task_level", false)
	v.SetDefault("agents.done_status_id", "done")

	v.SetDefault("git.base_branch", "")

	v.SetDefault("tui.refresh_rate", "100ms")

	v.SetDefault("post_feature_hooks.barney_audit.enabled", false)
	v.SetDefault("post_feature_hooks.barney_audit.script", "")
}

// getUserConfigDir returns the XDG config directory for Stride.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "stride")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "stride")
	}
	return filepath.Join(home, ".config", "stride")
}

// findProjectConfig searches for .stride.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".stride.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			Timeout: 10 * time.Second,
		},
		Agents: AgentsConfig{
			Max:          3,
			Backend:      "cli",
			RunTimeout:   15 * time.Minute,
			DoneStatusID: "done",
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
