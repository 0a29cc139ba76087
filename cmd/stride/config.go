package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/stride-cli/stride/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Stride configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/stride/config.yaml
Project-specific overrides can be placed in .stride.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key:        %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("bedrock.enabled:          %v\n", cfg.Bedrock.Enabled)
	fmt.Printf("bedrock.region:           %s\n", orUnset(cfg.Bedrock.Region))
	fmt.Printf("bedrock.profile:          %s\n", orUnset(cfg.Bedrock.Profile))
	fmt.Printf("tracker.base_url:         %s\n", orUnset(cfg.Tracker.BaseURL))
	fmt.Printf("tracker.api_key:          %s\n", maskGeneric(cfg.Tracker.APIKey))
	fmt.Printf("tracker.timeout:          %s\n", cfg.Tracker.Timeout)
	fmt.Printf("agents.max:               %d\n", cfg.Agents.Max)
	fmt.Printf("agents.backend:           %s\n", cfg.Agents.Backend)
	fmt.Printf("agents.model:             %s\n", orUnset(cfg.Agents.Model))
	fmt.Printf("agents.run_timeout:       %s\n", cfg.Agents.RunTimeout)
	fmt.Printf("agents.task_level:        %v\n", cfg.Agents.TaskLevel)
	fmt.Printf("agents.done_status_id:    %s\n", cfg.Agents.DoneStatusID)
	fmt.Printf("git.base_branch:          %s\n", orUnset(cfg.Git.BaseBranch))
	fmt.Printf("tui.refresh_rate:         %s\n", cfg.TUI.RefreshRate)
	fmt.Printf("post_feature_hooks.barney_audit.enabled: %v\n", cfg.Hooks.BarneyAudit.Enabled)
	fmt.Printf("post_feature_hooks.barney_audit.script:  %s\n", orUnset(cfg.Hooks.BarneyAudit.Script))
	fmt.Println()
	fmt.Printf("user config:    %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("project config: %s\n", project)
	}
}

// displayConfigKey prints the value of one configuration key.
func displayConfigKey(cfg *config.Config, key string) {
	switch key {
	case "anthropic.api_key":
		fmt.Println(config.MaskAPIKey(cfg.Anthropic.APIKey))
	case "tracker.base_url":
		fmt.Println(cfg.Tracker.BaseURL)
	case "tracker.timeout":
		fmt.Println(cfg.Tracker.Timeout)
	case "agents.max":
		fmt.Println(cfg.Agents.Max)
	case "agents.backend":
		fmt.Println(cfg.Agents.Backend)
	case "agents.model":
		fmt.Println(cfg.Agents.Model)
	case "agents.run_timeout":
		fmt.Println(cfg.Agents.RunTimeout)
	case "agents.task_level":
		fmt.Println(cfg.Agents.TaskLevel)
	case "agents.done_status_id":
		fmt.Println(cfg.Agents.DoneStatusID)
	case "git.base_branch":
		fmt.Println(cfg.Git.BaseBranch)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}
}

// setConfigKey updates one configuration value and saves the file.
func setConfigKey(cfg *config.Config, key, value string) {
	var err error
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "tracker.base_url":
		cfg.Tracker.BaseURL = value
	case "tracker.api_key":
		cfg.Tracker.APIKey = value
	case "tracker.timeout":
		cfg.Tracker.Timeout, err = time.ParseDuration(value)
	case "agents.max":
		cfg.Agents.Max, err = strconv.Atoi(value)
	case "agents.backend":
		if value != "cli" && value != "api" {
			err = fmt.Errorf("backend must be cli or api")
		}
		cfg.Agents.Backend = value
	case "agents.model":
		cfg.Agents.Model = value
	case "agents.run_timeout":
		cfg.Agents.RunTimeout, err = time.ParseDuration(value)
	case "agents.task_level":
		cfg.Agents.TaskLevel, err = strconv.ParseBool(value)
	case "agents.done_status_id":
		cfg.Agents.DoneStatusID = value
	case "git.base_branch":
		cfg.Git.BaseBranch = value
	case "post_feature_hooks.barney_audit.enabled":
		cfg.Hooks.BarneyAudit.Enabled, err = strconv.ParseBool(value)
	case "post_feature_hooks.barney_audit.script":
		cfg.Hooks.BarneyAudit.Script = value
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid value for %s: %v\n", key, err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s\n", key)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskGeneric(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "****"
}
