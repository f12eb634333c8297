package editor

import (
	"errors"
	"slices"

	"github.com/guregu/null/v6"

	"github.com/axiskey/mapper/internal/mapping"
)

// AddControl places a control of type t at the canvas center.
func (e *Editor) AddControl(t mapping.ControlType) (mapping.Control, bool) {
	return e.AddControlAt(t, mapping.DefaultX, mapping.DefaultY)
}

// AddControlAt places a control of type t at (x, y), appends it to the active
// profile and selects it.
func (e *Editor) AddControlAt(t mapping.ControlType, x, y float64) (mapping.Control, bool) {
	c := mapping.NewControl(t, x, y)
	_, ok := e.store.UpdateActiveProfile(func(p mapping.Profile) (mapping.ProfilePatch, bool) {
		return mapping.ProfilePatch{Controls: append(p.Controls, c)}, true
	})
	if !ok {
		return mapping.Control{}, false
	}

	e.mu.Lock()
	e.selected = c.ID
	e.mu.Unlock()

	e.log.Debug().Str("id", c.ID).Str("type", string(t)).Msg("control added")
	return c, true
}

// Move sets the position of a control, clamping each axis to [0,100].
func (e *Editor) Move(id string, x, y float64) (mapping.Control, bool) {
	return e.updateControl(id, func(c *mapping.Control) bool {
		c.X = mapping.ClampPosition(x)
		c.Y = mapping.ClampPosition(y)
		return true
	})
}

// Resize sets the diameter of a control, clamped to [30,300].
func (e *Editor) Resize(id string, size int) (mapping.Control, bool) {
	return e.updateControl(id, func(c *mapping.Control) bool {
		c.Size = mapping.ClampSize(size)
		return true
	})
}

// Rebind binds a control to key. An empty key on a TAP control stores the
// placeholder instead.
func (e *Editor) Rebind(id, key string) (mapping.Control, bool) {
	return e.updateControl(id, func(c *mapping.Control) bool {
		bindKey(c, key)
		return true
	})
}

func bindKey(c *mapping.Control, key string) {
	if key == "" && c.Type() == mapping.ControlTap {
		key = mapping.PlaceholderKey
	}
	c.Key = key
}

func validDirection(d mapping.SwipeDirection) bool {
	switch d {
	case mapping.SwipeUp, mapping.SwipeDown, mapping.SwipeLeft, mapping.SwipeRight:
		return true
	}
	return false
}

var (
	ErrNoControl    = errors.New("no active profile or unknown control")
	ErrBadDirection = errors.New("direction needs a SWIPE control and UP, DOWN, LEFT or RIGHT")
)

// ControlPatch holds the control fields to change. Nil fields are kept.
type ControlPatch struct {
	X         *float64
	Y         *float64
	Size      *int
	Opacity   *int
	Key       *string
	Direction *mapping.SwipeDirection
	Label     *null.String
}

// PatchControl applies every field of patch in one store mutation. If any
// field is rejected nothing is written.
func (e *Editor) PatchControl(id string, patch ControlPatch) (mapping.Control, error) {
	if patch.Direction != nil && !validDirection(*patch.Direction) {
		return mapping.Control{}, ErrBadDirection
	}

	var rejected error
	c, ok := e.updateControl(id, func(c *mapping.Control) bool {
		if patch.Direction != nil {
			if _, ok := c.Variant.(mapping.Swipe); !ok {
				rejected = ErrBadDirection
				return false
			}
			c.Variant = mapping.Swipe{Direction: *patch.Direction}
		}
		if patch.X != nil {
			c.X = mapping.ClampPosition(*patch.X)
		}
		if patch.Y != nil {
			c.Y = mapping.ClampPosition(*patch.Y)
		}
		if patch.Size != nil {
			c.Size = mapping.ClampSize(*patch.Size)
		}
		if patch.Opacity != nil {
			c.Opacity = *patch.Opacity
		}
		if patch.Key != nil {
			bindKey(c, *patch.Key)
		}
		if patch.Label != nil {
			c.Label = *patch.Label
		}
		return true
	})
	if rejected != nil {
		return mapping.Control{}, rejected
	}
	if !ok {
		return mapping.Control{}, ErrNoControl
	}
	return c, nil
}

// Remove deletes a control. Removing the selected control clears the
// selection; removing the control being listened for cancels listening.
func (e *Editor) Remove(id string) bool {
	_, ok := e.store.UpdateActiveProfile(func(p mapping.Profile) (mapping.ProfilePatch, bool) {
		_, i, found := p.Control(id)
		if !found {
			return mapping.ProfilePatch{}, false
		}
		return mapping.ProfilePatch{Controls: slices.Delete(p.Controls, i, i+1)}, true
	})
	if !ok {
		return false
	}

	e.mu.Lock()
	if e.selected == id {
		e.selected = ""
	}
	if e.capture.target == id {
		e.capture.reset()
	}
	e.mu.Unlock()

	e.log.Debug().Str("id", id).Msg("control removed")
	return true
}

// CanvasClick adds a TAP control where the pointer hit an empty part of the
// canvas. It only acts in edit mode.
func (e *Editor) CanvasClick(canvas Rect, px, py float64) (mapping.Control, bool) {
	if !e.EditMode() {
		return mapping.Control{}, false
	}
	x, y := canvas.Normalize(px, py)
	return e.AddControlAt(mapping.ControlTap, x, y)
}
