package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/stride-cli/stride/internal/agent"
	"github.com/stride-cli/stride/internal/config"
)

// buildAgentFactory creates the agent factory selected by configuration.
// The cli backend shells out to the claude CLI in the repository; the
// api backend talks to the Anthropic API (optionally through Bedrock).
func buildAgentFactory(cfg *config.Config, repoPath string) (agent.Factory, error) {
	switch cfg.Agents.Backend {
	case "", "cli":
		if err := CheckClaudeCLI(); err != nil {
			return nil, err
		}
		return agent.NewCLIFactory(agent.CLIRunnerConfig{
			WorkDir: repoPath,
			Model:   cfg.Agents.Model,
		}), nil

	case "api":
		apiKey := ""
		if !cfg.Bedrock.Enabled {
			key, err := config.GetAPIKey(cfg)
			if err != nil {
				return nil, err
			}
			if err := config.ValidateAPIKey(key); err != nil {
				return nil, err
			}
			apiKey = key
		}
		return agent.NewAPIFactory(agent.APIRunnerConfig{
			Model:         anthropic.Model(cfg.Agents.Model),
			APIKey:        apiKey,
			UseAWSBedrock: cfg.Bedrock.Enabled,
			AWSRegion:     cfg.Bedrock.Region,
			AWSProfile:    cfg.Bedrock.Profile,
		}), nil

	default:
		return nil, fmt.Errorf("unknown agent backend %q (expected cli or api)", cfg.Agents.Backend)
	}
}
