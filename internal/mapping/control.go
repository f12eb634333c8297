package mapping

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/rs/xid"
)

// ControlType is the wire tag of a control variant.
type ControlType string

const (
	ControlTap      ControlType = "TAP"
	ControlWASD     ControlType = "WASD"
	ControlVista    ControlType = "VISTA"
	ControlFire     ControlType = "FIRE"
	ControlMacro    ControlType = "MACRO"
	ControlSwipe    ControlType = "SWIPE"
	ControlSmartAim ControlType = "SMART_AIM"
)

// ControlTypes lists every known variant tag.
var ControlTypes = []ControlType{
	ControlTap, ControlWASD, ControlVista, ControlFire, ControlMacro, ControlSwipe, ControlSmartAim,
}

// ErrUnknownControlType is returned when decoding a control with a tag outside ControlTypes.
var ErrUnknownControlType = errors.New("unknown control type")

// ParseControlType validates a wire tag.
func ParseControlType(s string) (ControlType, error) {
	for _, t := range ControlTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownControlType, s)
}

// SwipeDirection is the gesture direction of a SWIPE control.
type SwipeDirection string

const (
	SwipeUp    SwipeDirection = "UP"
	SwipeDown  SwipeDirection = "DOWN"
	SwipeLeft  SwipeDirection = "LEFT"
	SwipeRight SwipeDirection = "RIGHT"
)

func (d SwipeDirection) valid() bool {
	switch d {
	case SwipeUp, SwipeDown, SwipeLeft, SwipeRight:
		return true
	}
	return false
}

const (
	MinPosition = 0.0
	MaxPosition = 100.0
	MinSize     = 30
	MaxSize     = 300

	DefaultX       = 50.0
	DefaultY       = 50.0
	DefaultOpacity = 80

	// PlaceholderKey marks an unbound TAP control or macro step.
	PlaceholderKey = "?"
	// DefaultStepDelay is the delay of a freshly added macro step, in milliseconds.
	DefaultStepDelay = 50
)

// Variant carries the fields specific to one control type.
type Variant interface {
	Type() ControlType
	clone() Variant
}

type (
	Tap      struct{}
	WASD     struct{}
	Vista    struct{}
	Fire     struct{}
	SmartAim struct{}
)

// Macro holds the ordered steps of a MACRO control. Slice order is execution order.
type Macro struct {
	Steps []MacroStep
}

// Swipe holds the gesture direction of a SWIPE control.
type Swipe struct {
	Direction SwipeDirection
}

func (Tap) Type() ControlType      { return ControlTap }
func (WASD) Type() ControlType     { return ControlWASD }
func (Vista) Type() ControlType    { return ControlVista }
func (Fire) Type() ControlType     { return ControlFire }
func (SmartAim) Type() ControlType { return ControlSmartAim }
func (Macro) Type() ControlType    { return ControlMacro }
func (Swipe) Type() ControlType    { return ControlSwipe }

func (v Tap) clone() Variant      { return v }
func (v WASD) clone() Variant     { return v }
func (v Vista) clone() Variant    { return v }
func (v Fire) clone() Variant     { return v }
func (v SmartAim) clone() Variant { return v }
func (v Swipe) clone() Variant    { return v }
func (v Macro) clone() Variant {
	return Macro{Steps: append(make([]MacroStep, 0, len(v.Steps)), v.Steps...)}
}

// MacroStep is one (key, delay) pair of a macro.
type MacroStep struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Delay int    `json:"delay"`
}

// NewMacroStep returns a placeholder step with a fresh id.
func NewMacroStep() MacroStep {
	return MacroStep{ID: NewID(), Key: PlaceholderKey, Delay: DefaultStepDelay}
}

// Control is one placed overlay element. Header fields are shared by every
// variant; type specific data lives in Variant.
type Control struct {
	ID      string
	X       float64
	Y       float64
	Key     string
	Size    int
	Opacity int
	Label   null.String
	Variant Variant
}

// NewID returns a fresh opaque identifier for controls and macro steps.
func NewID() string {
	return xid.New().String()
}

// Type reports the variant tag of c.
func (c Control) Type() ControlType {
	if c.Variant == nil {
		return ControlTap
	}
	return c.Variant.Type()
}

// Clone returns a deep copy of c.
func (c Control) Clone() Control {
	if c.Variant != nil {
		c.Variant = c.Variant.clone()
	}
	return c
}

// Steps returns the macro steps of a MACRO control, or false for any other type.
func (c Control) Steps() ([]MacroStep, bool) {
	m, ok := c.Variant.(Macro)
	if !ok {
		return nil, false
	}
	return m.Steps, true
}

// NewControl builds a control of type t at (x, y) with the per-type defaults.
func NewControl(t ControlType, x, y float64) Control {
	c := Control{
		ID:      NewID(),
		X:       ClampPosition(x),
		Y:       ClampPosition(y),
		Opacity: DefaultOpacity,
	}
	switch t {
	case ControlWASD:
		c.Key, c.Size, c.Variant = "WASD", 140, WASD{}
	case ControlVista:
		c.Key, c.Size, c.Variant = "F1", 64, Vista{}
	case ControlFire:
		c.Key, c.Size, c.Variant = "LMB", 64, Fire{}
	case ControlMacro:
		c.Key, c.Size, c.Variant = "M", 65, Macro{Steps: []MacroStep{NewMacroStep()}}
	case ControlSwipe:
		c.Key, c.Size, c.Variant = "S", 65, Swipe{Direction: SwipeUp}
	case ControlSmartAim:
		c.Key, c.Size, c.Variant = "RMB", 64, SmartAim{}
	default:
		c.Key, c.Size, c.Variant = PlaceholderKey, 54, Tap{}
	}
	return c
}

// ClampPosition bounds a percentage coordinate to [0,100].
func ClampPosition(v float64) float64 {
	return min(max(v, MinPosition), MaxPosition)
}

// ClampSize bounds a control diameter to [30,300].
func ClampSize(v int) int {
	return min(max(v, MinSize), MaxSize)
}

// controlJSON is the flat persisted form of a control.
type controlJSON struct {
	ID             string          `json:"id"`
	Type           ControlType     `json:"type"`
	X              float64         `json:"x"`
	Y              float64         `json:"y"`
	Key            string          `json:"key"`
	Label          null.String     `json:"label"`
	Size           int             `json:"size"`
	Opacity        int             `json:"opacity"`
	MacroSteps     []MacroStep     `json:"macroSteps,omitempty"`
	SwipeDirection *SwipeDirection `json:"swipeDirection,omitempty"`
}

func (c Control) MarshalJSON() ([]byte, error) {
	w := controlJSON{
		ID:      c.ID,
		Type:    c.Type(),
		X:       c.X,
		Y:       c.Y,
		Key:     c.Key,
		Label:   c.Label,
		Size:    c.Size,
		Opacity: c.Opacity,
	}
	switch v := c.Variant.(type) {
	case Macro:
		w.MacroSteps = v.Steps
	case Swipe:
		d := v.Direction
		w.SwipeDirection = &d
	}
	return json.Marshal(w)
}

func (c *Control) UnmarshalJSON(p []byte) error {
	var w controlJSON
	if err := json.Unmarshal(p, &w); err != nil {
		return err
	}
	if _, err := ParseControlType(string(w.Type)); err != nil {
		return err
	}

	*c = Control{
		ID:      w.ID,
		X:       w.X,
		Y:       w.Y,
		Key:     w.Key,
		Label:   w.Label,
		Size:    w.Size,
		Opacity: w.Opacity,
	}
	switch w.Type {
	case ControlTap:
		c.Variant = Tap{}
	case ControlWASD:
		c.Variant = WASD{}
	case ControlVista:
		c.Variant = Vista{}
	case ControlFire:
		c.Variant = Fire{}
	case ControlSmartAim:
		c.Variant = SmartAim{}
	case ControlMacro:
		steps := w.MacroSteps
		if steps == nil {
			steps = []MacroStep{}
		}
		c.Variant = Macro{Steps: steps}
	case ControlSwipe:
		d := SwipeUp
		if w.SwipeDirection != nil && w.SwipeDirection.valid() {
			d = *w.SwipeDirection
		}
		c.Variant = Swipe{Direction: d}
	}
	return nil
}
