// Package plan loads execution plans from YAML files. A plan is an
// ordered list of phases; the run loop executes them one at a time.
package plan

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/stride-cli/stride/pkg/models"
)

// Plan is a parsed execution plan.
type Plan struct {
	// Version is the plan file format version.
	Version int `yaml:"version"`
	// Name is a human-readable label for the plan.
	Name string `yaml:"name,omitempty"`
	// Epic scopes every feature in the plan to a platform epic. Items
	// without an explicit epic_id inherit it.
	Epic string `yaml:"epic,omitempty"`
	// Phases are executed in ascending Order.
	Phases []models.ExecutionPhase `yaml:"phases"`
}

// currentVersion is the only plan format this build understands.
const currentVersion = 1

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates plan YAML.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.normalize()
	return p, nil
}

func (p *Plan) validate() error {
	if p.Version != currentVersion {
		return fmt.Errorf("unsupported plan version %d", p.Version)
	}
	if len(p.Phases) == 0 {
		return fmt.Errorf("plan has no phases")
	}

	seen := make(map[int]bool, len(p.Phases))
	for i := range p.Phases {
		phase := &p.Phases[i]
		// Phase.Validate already prefixes errors with the phase order.
		if err := phase.Validate(); err != nil {
			return err
		}
		if seen[phase.Order] {
			return fmt.Errorf("duplicate phase order %d", phase.Order)
		}
		seen[phase.Order] = true
	}

	ids := make(map[string]bool)
	for i := range p.Phases {
		for j := range p.Phases[i].Items {
			id := p.Phases[i].Items[j].ID
			if ids[id] {
				return fmt.Errorf("item %s appears in more than one phase", id)
			}
			ids[id] = true
		}
	}
	return nil
}

// normalize sorts phases by order and fills in inherited fields.
func (p *Plan) normalize() {
	sort.Slice(p.Phases, func(a, b int) bool {
		return p.Phases[a].Order < p.Phases[b].Order
	})
	if p.Epic == "" {
		return
	}
	for i := range p.Phases {
		for j := range p.Phases[i].Items {
			item := &p.Phases[i].Items[j]
			if item.EpicID == "" {
				item.EpicID = p.Epic
			}
		}
	}
}

// ItemCount returns the total number of items across all phases.
func (p *Plan) ItemCount() int {
	n := 0
	for i := range p.Phases {
		n += len(p.Phases[i].Items)
	}
	return n
}
