package model

import (
	"fmt"
)

// Tool names that may appear in a workflow step. The set is closed: the
// recorder only ever emits these, and Validate rejects anything else.
const (
	ToolNavigate           = "navigate"
	ToolClick              = "click"
	ToolType               = "type"
	ToolSelectOption       = "select_option"
	ToolSnapshotCheckpoint = "snapshot-checkpoint"
)

// KnownTool reports whether name is one of the recordable tool names.
func KnownTool(name string) bool {
	switch name {
	case ToolNavigate, ToolClick, ToolType, ToolSelectOption, ToolSnapshotCheckpoint:
		return true
	}
	return false
}

// SelectorDescriptor identifies a UI element independently of the ephemeral
// reference ids the browser tool hands out. Role + accessible name survive
// re-snapshotting of an unchanged page; Ordinal breaks ties between
// same-role/same-name siblings.
type SelectorDescriptor struct {
	Role     string `json:"role"                     yaml:"role"`
	Name     string `json:"accessibleName"           yaml:"accessibleName"`
	TextHint string `json:"textHint,omitempty"       yaml:"textHint,omitempty"`
	Ordinal  int    `json:"ordinal"                  yaml:"ordinal"`
}

// Equal reports whether two descriptors identify the same element.
// All four fields must match.
func (d SelectorDescriptor) Equal(o SelectorDescriptor) bool {
	return d == o
}

func (d SelectorDescriptor) String() string {
	if d.Name != "" {
		return fmt.Sprintf("%s %q [%d]", d.Role, d.Name, d.Ordinal)
	}
	return fmt.Sprintf("%s [%d]", d.Role, d.Ordinal)
}

// Step is one recorded action. Step numbers are 1-based and contiguous in
// recording order. Target is nil for navigate and snapshot-checkpoint steps.
type Step struct {
	Step        int                 `json:"step"                yaml:"step"`
	Tool        string              `json:"tool"                yaml:"tool"`
	Description string              `json:"description"         yaml:"description"`
	Target      *SelectorDescriptor `json:"target,omitempty"    yaml:"target,omitempty"`
	Arguments   map[string]any      `json:"arguments"           yaml:"arguments"`
	Note        string              `json:"note,omitempty"      yaml:"note,omitempty"`
}

// Workflow is a named, replayable sequence of recorded steps. Documents are
// written wholesale on save and never mutated in place; the JSON field names
// are the persisted wire format and must stay stable.
type Workflow struct {
	Name            string   `json:"name"                      yaml:"name"`
	Description     string   `json:"description"               yaml:"description"`
	Steps           []Step   `json:"steps"                     yaml:"steps"`
	SuccessCriteria []string `json:"successCriteria,omitempty" yaml:"successCriteria,omitempty"`
	Notes           []string `json:"notes,omitempty"           yaml:"notes,omitempty"`
}

// Validate checks the structural invariants of a workflow document:
// non-empty name, at least one step, contiguous 1-based step numbers, and
// known tool names.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workflow has no name")
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow %q has no steps", w.Name)
	}
	for i, s := range w.Steps {
		if s.Step != i+1 {
			return fmt.Errorf("workflow %q: step %d is numbered %d", w.Name, i+1, s.Step)
		}
		if !KnownTool(s.Tool) {
			return fmt.Errorf("workflow %q: step %d uses unknown tool %q", w.Name, s.Step, s.Tool)
		}
	}
	return nil
}
