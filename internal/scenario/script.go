// Package scenario replays scripted stack operations against a pop engine
// on a manual clock and reports the state of each view after every step.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popstack/internal/config"
)

// Action is the kind of a script step.
type Action string

const (
	ActionPush       Action = "push"
	ActionReplace    Action = "replace"
	ActionReplaceAll Action = "replace_all"
	ActionPop        Action = "pop"
	ActionClear      Action = "clear"
	ActionRelease    Action = "release"
	ActionAdvance    Action = "advance"
	ActionExpect     Action = "expect"
)

// Actions returns all valid actions.
func Actions() []Action {
	return []Action{
		ActionPush, ActionReplace, ActionReplaceAll, ActionPop,
		ActionClear, ActionRelease, ActionAdvance, ActionExpect,
	}
}

// Duration is a time.Duration written as "1500ms", "2s" or integer milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var cd config.Duration
	if err := cd.UnmarshalText([]byte(node.Value)); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(cd)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Script is a named list of steps.
type Script struct {
	Name  string   `yaml:"name"`
	Start string   `yaml:"start,omitempty"` // RFC 3339 start time of the clock
	Views []string `yaml:"views,omitempty"`
	Steps []Step   `yaml:"steps"`
}

// Step is one operation. Which fields apply depends on Action.
type Step struct {
	Action Action `yaml:"action"`
	View   string `yaml:"view,omitempty"`

	// push, replace, replace_all
	ID      string         `yaml:"id,omitempty"`
	Timeout Duration       `yaml:"timeout,omitempty"`
	Props   map[string]any `yaml:"props,omitempty"`

	// advance
	By Duration `yaml:"by,omitempty"`

	// expect
	Depth     *int      `yaml:"depth,omitempty"`
	Top       *string   `yaml:"top,omitempty"`
	Remaining *Duration `yaml:"remaining,omitempty"`
	Timer     string    `yaml:"timer,omitempty"`
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step for an action and the fields it needs.
func (s *Script) Validate() error {
	if s.Start != "" {
		if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Action {
	case ActionPush, ActionReplace, ActionReplaceAll, ActionPop, ActionClear, ActionRelease:
		return nil
	case ActionAdvance:
		if s.By < 0 {
			return fmt.Errorf("advance cannot go backwards (by %s)", time.Duration(s.By))
		}
		if s.By == 0 {
			return fmt.Errorf("advance needs by")
		}
		return nil
	case ActionExpect:
		if s.Depth == nil && s.Top == nil && s.Remaining == nil && s.Timer == "" {
			return fmt.Errorf("expect needs at least one of depth, top, remaining, timer")
		}
		return nil
	case "":
		return fmt.Errorf("missing action")
	default:
		return fmt.Errorf("unknown action %q, must be one of: %v", s.Action, Actions())
	}
}
