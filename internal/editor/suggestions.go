package editor

import (
	"github.com/guregu/null/v6"

	"github.com/axiskey/mapper/internal/hud"
	"github.com/axiskey/mapper/internal/mapping"
)

type placement struct {
	typ mapping.ControlType
	key string
}

var placements = map[hud.Kind]placement{
	hud.KindFire:   {typ: mapping.ControlFire},
	hud.KindWASD:   {typ: mapping.ControlWASD},
	hud.KindAim:    {typ: mapping.ControlVista},
	hud.KindJump:   {typ: mapping.ControlTap, key: "SPACE"},
	hud.KindReload: {typ: mapping.ControlTap, key: "R"},
}

// ApplySuggestions places one control per recognized HUD suggestion in a
// single mutation. Unknown kinds are skipped. The selection is left alone.
func (e *Editor) ApplySuggestions(suggestions []hud.Suggestion) []mapping.Control {
	var added []mapping.Control
	for _, s := range suggestions {
		pl, ok := placements[s.Type]
		if !ok {
			e.log.Debug().Str("kind", string(s.Type)).Msg("skipping unknown HUD suggestion")
			continue
		}
		c := mapping.NewControl(pl.typ, s.X, s.Y)
		if pl.key != "" {
			c.Key = pl.key
		}
		if s.Label != "" {
			c.Label = null.StringFrom(s.Label)
		}
		added = append(added, c)
	}
	if len(added) == 0 {
		return nil
	}

	_, ok := e.store.UpdateActiveProfile(func(p mapping.Profile) (mapping.ProfilePatch, bool) {
		return mapping.ProfilePatch{Controls: append(p.Controls, added...)}, true
	})
	if !ok {
		return nil
	}
	e.log.Info().Int("controls", len(added)).Msg("HUD suggestions applied")
	return added
}
