package config

import "testing"

func TestGetAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env-key-12345678")
	key, err := GetAPIKey(nil)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "sk-ant-env-key-12345678" {
		t.Errorf("key = %q", key)
	}
	if src := GetAPIKeySource(nil); src != KeySourceEnv {
		t.Errorf("source = %s", src)
	}
}

func TestGetAPIKeyFromConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-cfg-key-12345678"
	key, err := GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "sk-ant-cfg-key-12345678" {
		t.Errorf("key = %q", key)
	}
	if src := GetAPIKeySource(cfg); src != KeySourceConfig {
		t.Errorf("source = %s", src)
	}
}

func TestGetAPIKeyMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := GetAPIKey(&Config{}); err != ErrNoAPIKey {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
	if src := GetAPIKeySource(&Config{}); src != KeySourceNone {
		t.Errorf("source = %s", src)
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"", true},
		{"sk-ant-short", true},
		{"not-a-key-at-all-really", true},
		{"sk-ant-REDACTED", false},
	}
	for _, tt := range tests {
		err := ValidateAPIKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAPIKey(%q) err = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key = %q", got)
	}
	if got := MaskAPIKey("sk-ant-tiny"); got != "***" {
		t.Errorf("short key = %q", got)
	}
	if got := MaskAPIKey("sk-ant-REDACTED"); got != "sk-ant-...7890" {
		t.Errorf("masked = %q", got)
	}
}
