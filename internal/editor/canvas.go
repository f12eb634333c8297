package editor

import (
	"sync"

	"github.com/axiskey/mapper/internal/mapping"
)

// Rect is the on-screen bounds of the editor canvas in pointer units.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize converts an absolute pointer position into clamped canvas
// percentages. A degenerate axis maps to 0.
func (r Rect) Normalize(px, py float64) (x, y float64) {
	if r.Width > 0 {
		x = (px - r.Left) / r.Width * 100
	}
	if r.Height > 0 {
		y = (py - r.Top) / r.Height * 100
	}
	return mapping.ClampPosition(x), mapping.ClampPosition(y)
}

// Drag is one pointer-drag session over a control. Every Move recomputes the
// position from the absolute pointer location, so events may be dropped or
// repeated without drift.
type Drag struct {
	editor *Editor
	id     string
	canvas Rect

	mu    sync.Mutex
	ended bool
}

// BeginDrag starts dragging id. It selects the control first and only works
// in edit mode.
func (e *Editor) BeginDrag(id string, canvas Rect) (*Drag, bool) {
	if !e.EditMode() {
		return nil, false
	}
	if !e.Select(id) {
		return nil, false
	}
	return &Drag{editor: e, id: id, canvas: canvas}, true
}

// ID returns the dragged control id.
func (d *Drag) ID() string {
	return d.id
}

// Move repositions the control under the pointer.
func (d *Drag) Move(px, py float64) (mapping.Control, bool) {
	if d.isEnded() {
		return mapping.Control{}, false
	}
	x, y := d.canvas.Normalize(px, py)
	return d.editor.Move(d.id, x, y)
}

// Resize sets the diameter from a resize handle.
func (d *Drag) Resize(size int) (mapping.Control, bool) {
	if d.isEnded() {
		return mapping.Control{}, false
	}
	return d.editor.Resize(d.id, size)
}

// End finishes the session on pointer-up or cancel.
func (d *Drag) End() {
	d.mu.Lock()
	d.ended = true
	d.mu.Unlock()
}

func (d *Drag) isEnded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ended
}
