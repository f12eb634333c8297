package editor

import "github.com/axiskey/mapper/internal/mapping"

// UpdateSensitivity merges patch over the active profile's sensitivity.
// Values are stored as given, including axis sensitivities outside the
// [0.01,8.00] slider range.
func (e *Editor) UpdateSensitivity(patch mapping.SensitivityPatch) (mapping.Sensitivity, bool) {
	p, ok := e.store.UpdateActiveProfile(func(p mapping.Profile) (mapping.ProfilePatch, bool) {
		s := patch.Apply(p.Sensitivity)
		return mapping.ProfilePatch{Sensitivity: &s}, true
	})
	if !ok {
		return mapping.Sensitivity{}, false
	}
	return p.Sensitivity, true
}
