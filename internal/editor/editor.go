// Package editor implements the in-place editing operations on the active
// profile of a profile.Store: controls, macro steps and sensitivity.
//
// Every operation is a single atomic mutation of the store. Operations that
// find no active profile, or no control or step with the given id, change
// nothing and report false.
package editor

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/axiskey/mapper/internal/mapping"
	"github.com/axiskey/mapper/internal/profile"
)

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "editor").Logger()

// Editor holds the per-session editing state: selection, edit mode and the
// key capture listener.
type Editor struct {
	store *profile.Store
	log   *zerolog.Logger

	mu       sync.Mutex
	selected string
	editMode bool
	capture  capture
}

func New(store *profile.Store, logger *zerolog.Logger) *Editor {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &Editor{store: store, log: logger}
}

// Store returns the store the editor mutates.
func (e *Editor) Store() *profile.Store {
	return e.store
}

// SetEditMode toggles edit mode. Switching clears the selection.
func (e *Editor) SetEditMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.editMode = on
	e.selected = ""
}

func (e *Editor) EditMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editMode
}

// SelectedID returns the id of the selected control, or "".
func (e *Editor) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Selected returns the selected control of the active profile.
func (e *Editor) Selected() (mapping.Control, bool) {
	id := e.SelectedID()
	if id == "" {
		return mapping.Control{}, false
	}
	p, ok := e.store.ActiveProfile()
	if !ok {
		return mapping.Control{}, false
	}
	c, _, ok := p.Control(id)
	return c, ok
}

// Select makes id the editing target. An empty id deselects. An id not in
// the active profile leaves the selection unchanged and reports false.
func (e *Editor) Select(id string) bool {
	if id == "" {
		e.mu.Lock()
		e.selected = ""
		e.mu.Unlock()
		return true
	}

	p, ok := e.store.ActiveProfile()
	if !ok {
		return false
	}
	if _, _, ok := p.Control(id); !ok {
		return false
	}

	e.mu.Lock()
	e.selected = id
	e.mu.Unlock()
	return true
}

// target resolves an empty id to the selected control.
func (e *Editor) target(id string) string {
	if id != "" {
		return id
	}
	return e.SelectedID()
}

// updateControl applies fn to the control with the given id in one store
// mutation. fn returning false aborts without writing.
func (e *Editor) updateControl(id string, fn func(c *mapping.Control) bool) (mapping.Control, bool) {
	var out mapping.Control
	_, ok := e.store.UpdateActiveProfile(func(p mapping.Profile) (mapping.ProfilePatch, bool) {
		_, i, found := p.Control(id)
		if !found {
			return mapping.ProfilePatch{}, false
		}
		c := p.Controls[i]
		if !fn(&c) {
			return mapping.ProfilePatch{}, false
		}
		p.Controls[i] = c
		out = c.Clone()
		return mapping.ProfilePatch{Controls: p.Controls}, true
	})
	return out, ok
}
