package editor

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiskey/mapper/internal/hud"
	"github.com/axiskey/mapper/internal/keys"
	"github.com/axiskey/mapper/internal/kv"
	"github.com/axiskey/mapper/internal/mapping"
	"github.com/axiskey/mapper/internal/profile"
)

func newEditor(t *testing.T) (*Editor, *profile.Store) {
	t.Helper()
	logger := zerolog.Nop()
	s := profile.New(kv.NewMemory(), profile.WithLogger(&logger))
	s.LoadSnapshot()
	require.True(t, s.SetActiveGame("ff-01"))
	return New(s, &logger), s
}

func controls(t *testing.T, s *profile.Store) []mapping.Control {
	t.Helper()
	p, ok := s.ActiveProfile()
	require.True(t, ok)
	return p.Controls
}

func TestAddWASDOnDefaultCatalog(t *testing.T) {
	e, s := newEditor(t)

	c, ok := e.AddControl(mapping.ControlWASD)
	require.True(t, ok)

	cs := controls(t, s)
	require.Len(t, cs, 1)
	assert.Equal(t, mapping.ControlWASD, cs[0].Type())
	assert.Equal(t, "WASD", cs[0].Key)
	assert.Contains(t, []int{120, 140}, cs[0].Size)
	assert.Equal(t, 50.0, cs[0].X)
	assert.Equal(t, 50.0, cs[0].Y)
	assert.Equal(t, c.ID, e.SelectedID())
}

func TestOperationsWithoutActiveProfile(t *testing.T) {
	e, s := newEditor(t)
	c, _ := e.AddControl(mapping.ControlFire)
	s.SetActiveGame("")

	_, ok := e.AddControl(mapping.ControlTap)
	assert.False(t, ok)
	_, ok = e.Move(c.ID, 1, 1)
	assert.False(t, ok)
	_, ok = e.UpdateSensitivity(mapping.SensitivityPatch{})
	assert.False(t, ok)
	assert.False(t, e.Remove(c.ID))
	assert.False(t, e.Listen(c.ID))
}

func TestMoveClamps(t *testing.T) {
	e, s := newEditor(t)
	c, _ := e.AddControl(mapping.ControlFire)

	tests := []struct {
		x, y, wantX, wantY float64
	}{
		{-10, 50, 0, 50},
		{150, -0.5, 100, 0},
		{100, 100, 100, 100},
		{33.3, 66.6, 33.3, 66.6},
		{-1e9, 1e9, 0, 100},
	}
	for _, tt := range tests {
		got, ok := e.Move(c.ID, tt.x, tt.y)
		require.True(t, ok)
		assert.Equal(t, tt.wantX, got.X)
		assert.Equal(t, tt.wantY, got.Y)

		stored := controls(t, s)[0]
		assert.GreaterOrEqual(t, stored.X, 0.0)
		assert.LessOrEqual(t, stored.X, 100.0)
		assert.GreaterOrEqual(t, stored.Y, 0.0)
		assert.LessOrEqual(t, stored.Y, 100.0)
	}

	_, ok := e.Move("missing", 1, 1)
	assert.False(t, ok)
}

func TestResizeClamps(t *testing.T) {
	e, s := newEditor(t)
	c, _ := e.AddControl(mapping.ControlVista)

	for size, want := range map[int]int{0: 30, -5: 30, 29: 30, 30: 30, 150: 150, 300: 300, 301: 300, 1 << 20: 300} {
		_, ok := e.Resize(c.ID, size)
		require.True(t, ok)
		assert.Equal(t, want, controls(t, s)[0].Size, "size %d", size)
	}
}

func TestRebind(t *testing.T) {
	e, s := newEditor(t)
	tap, _ := e.AddControl(mapping.ControlTap)
	fire, _ := e.AddControl(mapping.ControlFire)

	_, ok := e.Rebind(tap.ID, "")
	require.True(t, ok)
	_, ok = e.Rebind(fire.ID, "")
	require.True(t, ok)

	cs := controls(t, s)
	assert.Equal(t, "?", cs[0].Key, "empty TAP binding falls back to the placeholder")
	assert.Equal(t, "", cs[1].Key)

	got, ok := e.Rebind(tap.ID, "G")
	require.True(t, ok)
	assert.Equal(t, "G", got.Key)
}

func TestRemoveSelection(t *testing.T) {
	e, s := newEditor(t)
	a, _ := e.AddControl(mapping.ControlTap)
	b, _ := e.AddControl(mapping.ControlFire)

	require.True(t, e.Select(b.ID))
	require.True(t, e.Remove(a.ID))
	assert.Equal(t, b.ID, e.SelectedID(), "removing another control keeps the selection")

	require.True(t, e.Remove(b.ID))
	assert.Empty(t, e.SelectedID())
	assert.Empty(t, controls(t, s))

	assert.False(t, e.Remove(b.ID))
}

func TestSelect(t *testing.T) {
	e, _ := newEditor(t)
	c, _ := e.AddControl(mapping.ControlTap)

	assert.True(t, e.Select(""))
	assert.Empty(t, e.SelectedID())
	assert.False(t, e.Select("ghost"))
	assert.Empty(t, e.SelectedID())
	assert.True(t, e.Select(c.ID))

	got, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)
}

func TestIDsUnique(t *testing.T) {
	e, s := newEditor(t)
	for range 50 {
		_, ok := e.AddControl(mapping.ControlTap)
		require.True(t, ok)
	}
	seen := map[string]bool{}
	for _, c := range controls(t, s) {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestMacroSteps(t *testing.T) {
	e, s := newEditor(t)
	c, _ := e.AddControl(mapping.ControlMacro)

	steps, ok := c.Steps()
	require.True(t, ok)
	require.Len(t, steps, 1)
	assert.Equal(t, 50, steps[0].Delay)

	first, ok := e.AddMacroStep(c.ID)
	require.True(t, ok)
	second, ok := e.AddMacroStep("")
	require.True(t, ok, "empty id targets the selected control")

	steps, _ = controls(t, s)[0].Steps()
	require.Len(t, steps, 3)
	ids := map[string]bool{}
	for _, st := range steps {
		ids[st.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, first.ID, steps[1].ID)
	assert.Equal(t, second.ID, steps[2].ID)

	key := "R"
	delay := 120
	got, ok := e.UpdateMacroStep(c.ID, first.ID, StepPatch{Key: &key, Delay: &delay})
	require.True(t, ok)
	assert.Equal(t, mapping.MacroStep{ID: first.ID, Key: "R", Delay: 120}, got)

	negative := -40
	got, ok = e.UpdateMacroStep(c.ID, second.ID, StepPatch{Delay: &negative})
	require.True(t, ok)
	assert.Equal(t, 0, got.Delay)
	assert.Equal(t, "?", got.Key)

	_, ok = e.UpdateMacroStep(c.ID, "ghost", StepPatch{Key: &key})
	assert.False(t, ok)

	require.True(t, e.RemoveMacroStep(c.ID, steps[0].ID))
	steps, _ = controls(t, s)[0].Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, first.ID, steps[0].ID)
	assert.Equal(t, second.ID, steps[1].ID)
	assert.False(t, e.RemoveMacroStep(c.ID, "ghost"))
}

func TestMacroOpsIgnoreOtherTypes(t *testing.T) {
	e, s := newEditor(t)
	fire, _ := e.AddControl(mapping.ControlFire)
	before := controls(t, s)

	_, ok := e.AddMacroStep(fire.ID)
	assert.False(t, ok)
	assert.False(t, e.RemoveMacroStep(fire.ID, "x"))
	assert.Equal(t, before, controls(t, s))
}

func TestUpdateSensitivityStoresOutOfRange(t *testing.T) {
	e, s := newEditor(t)

	x := 12.0
	got, ok := e.UpdateSensitivity(mapping.SensitivityPatch{XSensitivity: &x})
	require.True(t, ok)
	// Not clamped to the slider range: programmatic input is stored verbatim.
	assert.Equal(t, 12.0, got.XSensitivity)

	p, _ := s.ActiveProfile()
	assert.Equal(t, 12.0, p.Sensitivity.XSensitivity)
	assert.Equal(t, 0.65, p.Sensitivity.YSensitivity)
	assert.Equal(t, 16450, p.Sensitivity.Tweaks)
}

func TestPatchSwipeDirection(t *testing.T) {
	e, _ := newEditor(t)
	swipe, _ := e.AddControl(mapping.ControlSwipe)
	tap, _ := e.AddControl(mapping.ControlTap)

	got, err := e.PatchControl(swipe.ID, ControlPatch{Direction: ptr(mapping.SwipeLeft)})
	require.NoError(t, err)
	assert.Equal(t, mapping.Swipe{Direction: mapping.SwipeLeft}, got.Variant)

	_, err = e.PatchControl(tap.ID, ControlPatch{Direction: ptr(mapping.SwipeLeft)})
	assert.ErrorIs(t, err, ErrBadDirection)
	_, err = e.PatchControl(swipe.ID, ControlPatch{Direction: ptr(mapping.SwipeDirection("DIAGONAL"))})
	assert.ErrorIs(t, err, ErrBadDirection)
	_, err = e.PatchControl("missing", ControlPatch{Size: ptr(100)})
	assert.ErrorIs(t, err, ErrNoControl)
}

func TestPatchControlAllOrNothing(t *testing.T) {
	e, s := newEditor(t)
	fire, _ := e.AddControl(mapping.ControlFire)
	before := controls(t, s)[0]

	_, err := e.PatchControl(fire.ID, ControlPatch{
		X:         ptr(10.0),
		Size:      ptr(200),
		Direction: ptr(mapping.SwipeUp),
	})
	require.ErrorIs(t, err, ErrBadDirection)
	assert.Equal(t, before, controls(t, s)[0])

	got, err := e.PatchControl(fire.ID, ControlPatch{
		X:       ptr(10.0),
		Y:       ptr(120.0),
		Size:    ptr(10),
		Opacity: ptr(40),
		Key:     ptr("Q"),
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.X)
	assert.Equal(t, 100.0, got.Y)
	assert.Equal(t, 30, got.Size)
	assert.Equal(t, 40, got.Opacity)
	assert.Equal(t, "Q", got.Key)
	assert.Equal(t, got, controls(t, s)[0])
}

func ptr[T any](v T) *T {
	return &v
}

func TestDrag(t *testing.T) {
	e, s := newEditor(t)
	c, _ := e.AddControl(mapping.ControlFire)
	e.Select("")
	canvas := Rect{Left: 100, Top: 50, Width: 800, Height: 400}

	_, ok := e.BeginDrag(c.ID, canvas)
	assert.False(t, ok, "drags need edit mode")

	e.SetEditMode(true)
	d, ok := e.BeginDrag(c.ID, canvas)
	require.True(t, ok)
	assert.Equal(t, c.ID, e.SelectedID(), "a drag selects its target")

	for range 3 {
		got, ok := d.Move(500, 250)
		require.True(t, ok)
		assert.Equal(t, 50.0, got.X)
		assert.Equal(t, 50.0, got.Y)
	}

	got, _ := d.Move(0, 1000)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 100.0, got.Y)

	got, ok = d.Resize(10)
	require.True(t, ok)
	assert.Equal(t, 30, got.Size)

	d.End()
	_, ok = d.Move(500, 250)
	assert.False(t, ok)
	_, ok = d.Resize(100)
	assert.False(t, ok)
	assert.Equal(t, 0.0, controls(t, s)[0].X)
}

func TestRectNormalizeDegenerate(t *testing.T) {
	x, y := Rect{}.Normalize(10, 10)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
}

func TestCanvasClickAddsTap(t *testing.T) {
	e, s := newEditor(t)
	canvas := Rect{Width: 200, Height: 100}

	_, ok := e.CanvasClick(canvas, 50, 50)
	assert.False(t, ok)

	e.SetEditMode(true)
	c, ok := e.CanvasClick(canvas, 50, 50)
	require.True(t, ok)
	assert.Equal(t, mapping.ControlTap, c.Type())
	assert.Equal(t, 25.0, c.X)
	assert.Equal(t, 50.0, c.Y)
	assert.Len(t, controls(t, s), 1)
}

func TestEditModeClearsSelection(t *testing.T) {
	e, _ := newEditor(t)
	e.AddControl(mapping.ControlTap)
	require.NotEmpty(t, e.SelectedID())

	e.SetEditMode(true)
	assert.Empty(t, e.SelectedID())
	assert.True(t, e.EditMode())
}

func TestKeyCapture(t *testing.T) {
	e, s := newEditor(t)
	fire, _ := e.AddControl(mapping.ControlFire)
	vista, _ := e.AddControl(mapping.ControlVista)
	tap, _ := e.AddControl(mapping.ControlTap)

	_, ok := e.HandleKey(keys.Event{Key: "q", Code: "KeyQ"})
	assert.False(t, ok, "idle listener does not consume keys")

	assert.False(t, e.Listen(tap.ID))
	_, state := e.Listening()
	assert.Equal(t, CaptureIdle, state)

	require.True(t, e.Listen(fire.ID))
	require.True(t, e.Listen(vista.ID), "a second listen replaces the target")
	target, state := e.Listening()
	assert.Equal(t, vista.ID, target)
	assert.Equal(t, CaptureListening, state)

	got, ok := e.HandleKey(keys.Event{Key: "q", Code: "KeyQ"})
	require.True(t, ok)
	assert.Equal(t, "Q", got.Key)

	_, state = e.Listening()
	assert.Equal(t, CaptureIdle, state, "listening ends after one key")

	cs := controls(t, s)
	assert.Equal(t, "LMB", cs[0].Key)
	assert.Equal(t, "Q", cs[1].Key)

	require.True(t, e.Listen(fire.ID))
	e.CancelListen()
	_, ok = e.HandleKey(keys.Event{Key: "Shift", Code: "ShiftLeft"})
	assert.False(t, ok)
	assert.Equal(t, "LMB", controls(t, s)[0].Key)
}

func TestRemoveCancelsListen(t *testing.T) {
	e, _ := newEditor(t)
	fire, _ := e.AddControl(mapping.ControlFire)
	require.True(t, e.Listen(fire.ID))

	require.True(t, e.Remove(fire.ID))
	_, state := e.Listening()
	assert.Equal(t, CaptureIdle, state)
}

func TestApplySuggestions(t *testing.T) {
	e, s := newEditor(t)

	added := e.ApplySuggestions([]hud.Suggestion{
		{Type: hud.KindFire, X: 85, Y: 70},
		{Type: hud.KindAim, X: 90, Y: 40, Label: "scope"},
		{Type: hud.KindJump, X: 88, Y: 85},
		{Type: hud.KindReload, X: 120, Y: -3},
		{Type: "GRENADE", X: 1, Y: 1},
	})
	require.Len(t, added, 4)

	cs := controls(t, s)
	require.Len(t, cs, 4)
	assert.Equal(t, mapping.ControlFire, cs[0].Type())
	assert.Equal(t, mapping.ControlVista, cs[1].Type())
	assert.Equal(t, "scope", cs[1].Label.String)
	assert.Equal(t, "SPACE", cs[2].Key)
	assert.Equal(t, "R", cs[3].Key)
	assert.Equal(t, 100.0, cs[3].X)
	assert.Equal(t, 0.0, cs[3].Y)
	assert.Empty(t, e.SelectedID())

	assert.Nil(t, e.ApplySuggestions(nil))
}

func TestPatchLabel(t *testing.T) {
	e, s := newEditor(t)
	c, _ := e.AddControl(mapping.ControlTap)

	_, err := e.PatchControl(c.ID, ControlPatch{Label: ptr(null.StringFrom("loot"))})
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("loot"), controls(t, s)[0].Label)

	_, err = e.PatchControl(c.ID, ControlPatch{Label: &null.String{}})
	require.NoError(t, err)
	assert.False(t, controls(t, s)[0].Label.Valid)

	got, err := e.PatchControl(c.ID, ControlPatch{Key: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, mapping.PlaceholderKey, got.Key)
}
