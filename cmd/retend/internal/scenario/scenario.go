// Package scenario loads and replays keyed-list scenarios against the
// in-memory host. A scenario is a YAML file describing successive list
// states; replaying it drives the reconciler exactly the way a live
// application would and captures the resulting tree and mutation trace.
package scenario

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/resuite/retend-sub003/pkg/cell"
	"github.com/resuite/retend-sub003/pkg/flow"
	"github.com/resuite/retend-sub003/pkg/host"
)

// SupportedSchema is the scenario schema major version this binary accepts.
const SupportedSchema = "v1"

// Item is one keyed list entry.
type Item struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

// Step is one list state; replay sets the list to exactly these items.
type Step struct {
	Set []Item `yaml:"set"`
}

// Scenario is the parsed scenario file.
type Scenario struct {
	SchemaVersion string `yaml:"schemaVersion"`
	Tag           string `yaml:"tag,omitempty"`
	Steps         []Step `yaml:"steps"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &s, nil
}

// Validate checks the schema version gate.
func (s *Scenario) Validate() error {
	if !semver.IsValid(s.SchemaVersion) {
		return fmt.Errorf("invalid schemaVersion %q (want a semantic version like %q)", s.SchemaVersion, SupportedSchema)
	}
	if semver.Major(s.SchemaVersion) != SupportedSchema {
		return fmt.Errorf("unsupported schemaVersion %s (this build supports %s)", s.SchemaVersion, SupportedSchema)
	}
	return nil
}

// Result captures a replay's outcome.
type Result struct {
	// Dump is the final host tree, indented text.
	Dump string
	// Trace lists the host mutations caused by every step after the first;
	// the initial render is not traced.
	Trace []string
}

// Replay mounts the first step's list, applies the remaining steps in order,
// and returns the final tree and the update-phase mutation trace. Item text
// is bound reactively, so a step that changes a surviving key's text updates
// the existing node instead of re-rendering the item.
func Replay(s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	m := host.NewMemory()
	ctx := flow.NewContext(m)
	tag := s.Tag
	if tag == "" {
		tag = "item"
	}

	var first []Item
	if len(s.Steps) > 0 {
		first = s.Steps[0].Set
	}
	texts := make(map[string]*cell.Cell[string])
	for _, it := range first {
		texts[it.Key] = cell.New(it.Text)
	}

	items := cell.New(first)
	content := flow.List(ctx, items,
		func(it Item, _ int) any { return it.Key },
		func(c *flow.Context, it Item, _ *cell.Cell[int]) host.Node {
			n := c.Adapter().CreateContainer(tag)
			c.Adapter().Append(n, flow.Text(c, texts[it.Key]))
			return n
		})
	ctx.Mount(m.Root(), content)
	m.ResetTrace()

	for _, step := range s.Steps[1:] {
		for _, it := range step.Set {
			if tc, ok := texts[it.Key]; ok {
				tc.Set(it.Text)
			} else {
				texts[it.Key] = cell.New(it.Text)
			}
		}
		items.Set(step.Set)
	}

	return &Result{Dump: m.Dump(), Trace: m.Trace()}, nil
}
