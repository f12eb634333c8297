package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"lowercase letter", Event{Key: "q", Code: "KeyQ"}, "Q"},
		{"shifted digit keeps the character", Event{Key: "!", Code: "Digit1"}, "!"},
		{"function key", Event{Key: "F5", Code: "F5"}, "F5"},
		{"space", Event{Key: " ", Code: "Space"}, "SPACE"},
		{"arrow", Event{Key: "ArrowUp", Code: "ArrowUp"}, "UP"},
		{"left shift", Event{Key: "Shift", Code: "ShiftLeft"}, "LSHIFT"},
		{"dead key falls back to code prefix strip", Event{Key: "Dead", Code: "KeyE"}, "E"},
		{"digit without key", Event{Code: "Digit7"}, "7"},
		{"unknown physical name", Event{Key: "Unidentified", Code: "IntlBackslash"}, "IntlBackslash"},
		{"multibyte character", Event{Key: "ç", Code: "Semicolon"}, "Ç"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.ev))
		})
	}
}

func TestCode(t *testing.T) {
	c, ok := Code("LMB")
	require.True(t, ok)
	assert.Equal(t, BTN_LEFT, c)

	_, ok = Code("?")
	assert.False(t, ok)
}

func TestBindingsSortedAndComplete(t *testing.T) {
	b := Bindings()
	require.Len(t, b, len(symbolCodes))
	assert.Equal(t, Binding{Symbol: "ESC", Code: KEY_ESC}, b[0])
	for i := 1; i < len(b); i++ {
		assert.LessOrEqual(t, b[i-1].Code, b[i].Code)
	}
}
