package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey indicates neither the environment nor the config file
// carries a usable Anthropic API key.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// KeySource identifies where an API key was resolved from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// resolveAPIKey applies the lookup order shared by GetAPIKey and
// GetAPIKeySource: ANTHROPIC_API_KEY wins, then the anthropic.api_key
// config entry with ${VAR} references expanded.
func resolveAPIKey(cfg *Config) (string, KeySource) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, KeySourceEnv
	}
	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		// A leftover ${VAR} means the referenced variable is unset.
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, KeySourceConfig
		}
	}
	return "", KeySourceNone
}

// GetAPIKey returns the resolved Anthropic API key or ErrNoAPIKey.
func GetAPIKey(cfg *Config) (string, error) {
	key, src := resolveAPIKey(cfg)
	if src == KeySourceNone {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// GetAPIKeySource reports where GetAPIKey would find the key.
func GetAPIKeySource(cfg *Config) KeySource {
	_, src := resolveAPIKey(cfg)
	return src
}

// ValidateAPIKey checks the shape of a key without calling the API.
func ValidateAPIKey(key string) error {
	switch {
	case key == "":
		return ErrNoAPIKey
	case !strings.HasPrefix(key, "sk-ant-"):
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	case len(key) < 20:
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey renders a key for display, keeping the "sk-ant-" prefix
// and the last four characters.
func MaskAPIKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 15:
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
