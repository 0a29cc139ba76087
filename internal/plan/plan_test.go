package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPlan = `
version: 1
name: auth rollout
epic: epic-9
phases:
  - order: 2
    can_run_in_parallel: false
    items:
      - type: task
        id: t-3
        identifier: AUTH-103
        title: Wire sessions
  - order: 1
    can_run_in_parallel: true
    items:
      - type: feature
        id: f-1
        identifier: AUTH-1
        title: Login flow
      - type: task
        id: t-2
        identifier: AUTH-102
        title: Password hashing
        epic_id: epic-override
`

func TestParseValidPlan(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "auth rollout" {
		t.Errorf("name = %q", p.Name)
	}
	if p.ItemCount() != 3 {
		t.Errorf("item count = %d", p.ItemCount())
	}
	// Phases come back sorted by order.
	if p.Phases[0].Order != 1 || p.Phases[1].Order != 2 {
		t.Errorf("phase orders = %d, %d", p.Phases[0].Order, p.Phases[1].Order)
	}
	// Items inherit the plan epic unless they set their own.
	if got := p.Phases[0].Items[0].EpicID; got != "epic-9" {
		t.Errorf("inherited epic = %q", got)
	}
	if got := p.Phases[0].Items[1].EpicID; got != "epic-override" {
		t.Errorf("explicit epic = %q", got)
	}
	if !p.Phases[0].CanRunInParallel || p.Phases[1].CanRunInParallel {
		t.Error("parallel flags not preserved")
	}
}

func TestParseRejectsBadPlans(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"wrong version", "version: 2\nphases:\n  - order: 1\n    items:\n      - {type: task, id: a, identifier: A, title: T}\n", "unsupported plan version"},
		{"no phases", "version: 1\nphases: []\n", "no phases"},
		{"empty phase", "version: 1\nphases:\n  - order: 1\n    items: []\n", "phase 1"},
		{"bad item type", "version: 1\nphases:\n  - order: 1\n    items:\n      - {type: story, id: a, identifier: A, title: T}\n", "phase 1"},
		{"duplicate order", "version: 1\nphases:\n  - order: 1\n    items:\n      - {type: task, id: a, identifier: A, title: T}\n  - order: 1\n    items:\n      - {type: task, id: b, identifier: B, title: T}\n", "duplicate phase order"},
		{"item in two phases", "version: 1\nphases:\n  - order: 1\n    items:\n      - {type: task, id: a, identifier: A, title: T}\n  - order: 2\n    items:\n      - {type: task, id: a, identifier: A2, title: T}\n", "more than one phase"},
		{"not yaml", "{{{{", "parsing plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(validPlan), 0600); err != nil {
		t.Fatalf("writing plan: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Phases) != 2 {
		t.Errorf("phases = %d", len(p.Phases))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
