package editor

import (
	"github.com/axiskey/mapper/internal/keys"
	"github.com/axiskey/mapper/internal/mapping"
)

// CaptureState is the state of the key capture listener.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureListening
)

func (s CaptureState) String() string {
	switch s {
	case CaptureListening:
		return "LISTENING"
	default:
		return "IDLE"
	}
}

// capture is guarded by Editor.mu. One listener exists per editor.
type capture struct {
	state  CaptureState
	target string
}

func (c *capture) reset() {
	c.state = CaptureIdle
	c.target = ""
}

// Listen enters listening mode for control id: the next key event is bound to
// it. A listen already in progress has its target replaced. TAP controls are
// rebound by text entry and cannot be listened for.
func (e *Editor) Listen(id string) bool {
	p, ok := e.store.ActiveProfile()
	if !ok {
		return false
	}
	c, _, ok := p.Control(id)
	if !ok || c.Type() == mapping.ControlTap {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.capture.state == CaptureListening && e.capture.target != id {
		e.log.Debug().Str("from", e.capture.target).Str("to", id).Msg("listen target replaced")
	}
	e.capture.state = CaptureListening
	e.capture.target = id
	e.selected = id
	return true
}

// CancelListen leaves listening mode without binding anything.
func (e *Editor) CancelListen() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.capture.reset()
}

// Listening returns the control being listened for.
func (e *Editor) Listening() (string, CaptureState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capture.target, e.capture.state
}

// HandleKey offers a key event to the listener. While listening the event is
// consumed: its normalized symbol is bound to the target and the listener
// returns to idle. When idle the event is not consumed.
func (e *Editor) HandleKey(ev keys.Event) (mapping.Control, bool) {
	e.mu.Lock()
	if e.capture.state != CaptureListening {
		e.mu.Unlock()
		return mapping.Control{}, false
	}
	target := e.capture.target
	e.capture.reset()
	e.mu.Unlock()

	sym := keys.Normalize(ev)
	c, ok := e.Rebind(target, sym)
	if ok {
		e.log.Debug().Str("id", target).Str("key", sym).Msg("key captured")
	}
	return c, ok
}
