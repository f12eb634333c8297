// Package keys normalizes captured key events into the symbols controls are
// bound to.
package keys

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Event is one key press as reported by a client: Key is the produced
// character or key name, Code the physical key name ("KeyA", "Digit1", ...).
type Event struct {
	Key  string `json:"key"`
	Code string `json:"code"`
}

// genericPrefixes are stripped from physical key names without a table entry.
var genericPrefixes = []string{"Key", "Digit"}

// Normalize returns the symbol for ev: a single printable character is
// uppercased, anything else is derived from the physical key name.
func Normalize(ev Event) string {
	if utf8.RuneCountInString(ev.Key) == 1 && strings.TrimSpace(ev.Key) != "" {
		return strings.ToUpper(ev.Key)
	}

	code := ev.Code
	if code == "" {
		code = ev.Key
	}
	if sym, ok := physicalNames[code]; ok {
		return sym
	}
	for _, prefix := range genericPrefixes {
		code = strings.Replace(code, prefix, "", 1)
	}
	return code
}

// Code returns the Linux input code bound to sym.
func Code(sym string) (int, bool) {
	c, ok := symbolCodes[sym]
	return c, ok
}

// Binding describes one bindable symbol.
type Binding struct {
	Symbol string `json:"symbol"`
	Code   int    `json:"code"`
}

// Bindings lists every known symbol ordered by code.
func Bindings() []Binding {
	out := make([]Binding, 0, len(symbolCodes))
	for sym, code := range symbolCodes {
		out = append(out, Binding{Symbol: sym, Code: code})
	}
	slices.SortFunc(out, func(a, b Binding) int {
		if a.Code != b.Code {
			return a.Code - b.Code
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return out
}
