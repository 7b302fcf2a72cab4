package domain

import (
	"reflect"
	"sort"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Position   *Position        `json:"position,omitempty"`
	Status     *ExecutionStatus `json:"status,omitempty"`
	Generating *bool            `json:"generating,omitempty"`

	// Answers contains only changed, added or deleted entries.
	// For deletions, the key is present with a nil value.
	Answers map[int]*string `json:"answers,omitempty"`

	// CustomAnswers follows the same convention as Answers.
	CustomAnswers map[int]*string `json:"custom_answers,omitempty"`

	// ControlsChanged lists the controls steps whose values changed.
	ControlsChanged []int `json:"controls_changed,omitempty"`

	// Result is set when a recipe appeared (or was replaced).
	Result *RecipeResult `json:"result,omitempty"`

	// ResultCleared is true when a reset discarded the recipe.
	ResultCleared bool `json:"result_cleared,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Position != newState.Position {
		pos := newState.Position
		diff.Position = &pos
	}
	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}
	if oldState != nil && oldState.Generating != newState.Generating {
		gen := newState.Generating
		diff.Generating = &gen
	}

	var oldAnswers, oldCustom map[int]string
	var oldControls Controls
	var oldResult *RecipeResult
	if oldState != nil {
		oldAnswers = oldState.Answers
		oldCustom = oldState.CustomAnswers
		oldControls = oldState.Controls
		oldResult = oldState.Result
	}
	diff.Answers = diffStrings(oldAnswers, newState.Answers)
	diff.CustomAnswers = diffStrings(oldCustom, newState.CustomAnswers)
	diff.ControlsChanged = diffControls(oldControls, newState.Controls)

	switch {
	case newState.Result != nil && !reflect.DeepEqual(oldResult, newState.Result):
		diff.Result = newState.Result
	case newState.Result == nil && oldResult != nil:
		diff.ResultCleared = true
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffStrings(old, new map[int]string) map[int]*string {
	delta := make(map[int]*string)

	for k, newVal := range new {
		if oldVal, exists := old[k]; !exists || oldVal != newVal {
			v := newVal
			delta[k] = &v
		}
	}
	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	// Return nil if delta is empty so omitempty can remove the key
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffControls(old, new Controls) []int {
	var changed []int
	for k, v := range new {
		if ov, ok := old[k]; !ok || !reflect.DeepEqual(ov, v) {
			changed = append(changed, k)
		}
	}
	for k := range old {
		if _, ok := new[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Ints(changed)
	return changed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Position == nil &&
		d.Status == nil &&
		d.Generating == nil &&
		len(d.Answers) == 0 &&
		len(d.CustomAnswers) == 0 &&
		len(d.ControlsChanged) == 0 &&
		d.Result == nil &&
		!d.ResultCleared
}
