package keys

// Linux input key codes for the symbols a control can be bound to. Only the
// keys the mapper offers are listed; they are reported to clients alongside
// each symbol and never written to a device.
const (
	KEY_ESC        = 1
	KEY_1          = 2
	KEY_2          = 3
	KEY_3          = 4
	KEY_4          = 5
	KEY_5          = 6
	KEY_6          = 7
	KEY_7          = 8
	KEY_8          = 9
	KEY_9          = 10
	KEY_0          = 11
	KEY_MINUS      = 12
	KEY_EQUAL      = 13
	KEY_BACKSPACE  = 14
	KEY_TAB        = 15
	KEY_Q          = 16
	KEY_W          = 17
	KEY_E          = 18
	KEY_R          = 19
	KEY_T          = 20
	KEY_Y          = 21
	KEY_U          = 22
	KEY_I          = 23
	KEY_O          = 24
	KEY_P          = 25
	KEY_ENTER      = 28
	KEY_LEFTCTRL   = 29
	KEY_A          = 30
	KEY_S          = 31
	KEY_D          = 32
	KEY_F          = 33
	KEY_G          = 34
	KEY_H          = 35
	KEY_J          = 36
	KEY_K          = 37
	KEY_L          = 38
	KEY_LEFTSHIFT  = 42
	KEY_Z          = 44
	KEY_X          = 45
	KEY_C          = 46
	KEY_V          = 47
	KEY_B          = 48
	KEY_N          = 49
	KEY_M          = 50
	KEY_RIGHTSHIFT = 54
	KEY_LEFTALT    = 56
	KEY_SPACE      = 57
	KEY_CAPSLOCK   = 58
	KEY_F1         = 59
	KEY_F2         = 60
	KEY_F3         = 61
	KEY_F4         = 62
	KEY_F5         = 63
	KEY_F6         = 64
	KEY_F7         = 65
	KEY_F8         = 66
	KEY_F9         = 67
	KEY_F10        = 68
	KEY_F11        = 87
	KEY_F12        = 88
	KEY_RIGHTCTRL  = 97
	KEY_RIGHTALT   = 100
	KEY_UP         = 103
	KEY_LEFT       = 105
	KEY_RIGHT      = 106
	KEY_DOWN       = 108

	BTN_LEFT   = 0x110
	BTN_RIGHT  = 0x111
	BTN_MIDDLE = 0x112
)

// symbolCodes maps a bindable symbol to its Linux code.
var symbolCodes = map[string]int{
	"A": KEY_A, "B": KEY_B, "C": KEY_C, "D": KEY_D, "E": KEY_E, "F": KEY_F,
	"G": KEY_G, "H": KEY_H, "I": KEY_I, "J": KEY_J, "K": KEY_K, "L": KEY_L,
	"M": KEY_M, "N": KEY_N, "O": KEY_O, "P": KEY_P, "Q": KEY_Q, "R": KEY_R,
	"S": KEY_S, "T": KEY_T, "U": KEY_U, "V": KEY_V, "W": KEY_W, "X": KEY_X,
	"Y": KEY_Y, "Z": KEY_Z,

	"1": KEY_1, "2": KEY_2, "3": KEY_3, "4": KEY_4, "5": KEY_5,
	"6": KEY_6, "7": KEY_7, "8": KEY_8, "9": KEY_9, "0": KEY_0,
	"-": KEY_MINUS, "=": KEY_EQUAL,

	"F1": KEY_F1, "F2": KEY_F2, "F3": KEY_F3, "F4": KEY_F4, "F5": KEY_F5, "F6": KEY_F6,
	"F7": KEY_F7, "F8": KEY_F8, "F9": KEY_F9, "F10": KEY_F10, "F11": KEY_F11, "F12": KEY_F12,

	"ESC":       KEY_ESC,
	"TAB":       KEY_TAB,
	"ENTER":     KEY_ENTER,
	"SPACE":     KEY_SPACE,
	"BACKSPACE": KEY_BACKSPACE,
	"CAPSLOCK":  KEY_CAPSLOCK,

	"LSHIFT": KEY_LEFTSHIFT, "RSHIFT": KEY_RIGHTSHIFT,
	"LCTRL": KEY_LEFTCTRL, "RCTRL": KEY_RIGHTCTRL,
	"LALT": KEY_LEFTALT, "RALT": KEY_RIGHTALT,

	"UP": KEY_UP, "DOWN": KEY_DOWN, "LEFT": KEY_LEFT, "RIGHT": KEY_RIGHT,

	"LMB": BTN_LEFT, "RMB": BTN_RIGHT, "MMB": BTN_MIDDLE,
}

// physicalNames maps DOM-style physical key names that do not reduce to a
// symbol by prefix stripping alone.
var physicalNames = map[string]string{
	"Escape":       "ESC",
	"Tab":          "TAB",
	"Enter":        "ENTER",
	"NumpadEnter":  "ENTER",
	"Space":        "SPACE",
	"Backspace":    "BACKSPACE",
	"CapsLock":     "CAPSLOCK",
	"ShiftLeft":    "LSHIFT",
	"ShiftRight":   "RSHIFT",
	"ControlLeft":  "LCTRL",
	"ControlRight": "RCTRL",
	"AltLeft":      "LALT",
	"AltRight":     "RALT",
	"ArrowUp":      "UP",
	"ArrowDown":    "DOWN",
	"ArrowLeft":    "LEFT",
	"ArrowRight":   "RIGHT",
	"Minus":        "-",
	"Equal":        "=",
}
