package editor

import (
	"slices"

	"github.com/axiskey/mapper/internal/mapping"
)

// StepPatch is a partial update of a macro step.
type StepPatch struct {
	Key   *string `json:"key,omitempty"`
	Delay *int    `json:"delay,omitempty"`
}

// updateMacro runs fn over the steps of a MACRO control. Empty controlID
// targets the selected control. Other control types are left untouched.
func (e *Editor) updateMacro(controlID string, fn func(steps []mapping.MacroStep) ([]mapping.MacroStep, bool)) (mapping.Control, bool) {
	return e.updateControl(e.target(controlID), func(c *mapping.Control) bool {
		m, ok := c.Variant.(mapping.Macro)
		if !ok {
			return false
		}
		steps, ok := fn(m.Steps)
		if !ok {
			return false
		}
		c.Variant = mapping.Macro{Steps: steps}
		return true
	})
}

// AddMacroStep appends a placeholder step to the end of the macro.
func (e *Editor) AddMacroStep(controlID string) (mapping.MacroStep, bool) {
	step := mapping.NewMacroStep()
	_, ok := e.updateMacro(controlID, func(steps []mapping.MacroStep) ([]mapping.MacroStep, bool) {
		return append(steps, step), true
	})
	if !ok {
		return mapping.MacroStep{}, false
	}
	return step, true
}

// UpdateMacroStep merges patch into the step with stepID. Negative delays are
// stored as 0.
func (e *Editor) UpdateMacroStep(controlID, stepID string, patch StepPatch) (mapping.MacroStep, bool) {
	var out mapping.MacroStep
	_, ok := e.updateMacro(controlID, func(steps []mapping.MacroStep) ([]mapping.MacroStep, bool) {
		i := slices.IndexFunc(steps, func(s mapping.MacroStep) bool { return s.ID == stepID })
		if i < 0 {
			return nil, false
		}
		if patch.Key != nil {
			steps[i].Key = *patch.Key
		}
		if patch.Delay != nil {
			steps[i].Delay = max(*patch.Delay, 0)
		}
		out = steps[i]
		return steps, true
	})
	return out, ok
}

// RemoveMacroStep deletes the step with stepID, keeping the order of the rest.
func (e *Editor) RemoveMacroStep(controlID, stepID string) bool {
	_, ok := e.updateMacro(controlID, func(steps []mapping.MacroStep) ([]mapping.MacroStep, bool) {
		i := slices.IndexFunc(steps, func(s mapping.MacroStep) bool { return s.ID == stepID })
		if i < 0 {
			return nil, false
		}
		return slices.Delete(steps, i, i+1), true
	})
	return ok
}
