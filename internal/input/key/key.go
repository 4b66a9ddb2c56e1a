package key

import (
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical names for non-printable keys.
const (
	Shift   = "Shift"
	Control = "Control"
	Alt     = "Alt"
	Meta    = "Meta"

	Enter     = "Enter"
	Tab       = "Tab"
	Escape    = "Escape"
	Backspace = "Backspace"
	Delete    = "Delete"
	Insert    = "Insert"
	Home      = "Home"
	End       = "End"
	PageUp    = "PageUp"
	PageDown  = "PageDown"

	ArrowUp    = "ArrowUp"
	ArrowDown  = "ArrowDown"
	ArrowLeft  = "ArrowLeft"
	ArrowRight = "ArrowRight"

	CapsLock    = "CapsLock"
	NumLock     = "NumLock"
	ScrollLock  = "ScrollLock"
	Pause       = "Pause"
	PrintScreen = "PrintScreen"
	ContextMenu = "ContextMenu"

	Space = " "
	Plus  = "+"

	// Unidentified is reported by hosts that cannot name a key.
	Unidentified = "Unidentified"
)

// nonPrintable lists every recognised non-printable key name.
var nonPrintable = map[string]bool{
	Shift: true, Control: true, Alt: true, Meta: true, "AltGraph": true,
	"OS": true, "Fn": true, "FnLock": true, "Hyper": true, "Super": true,
	"Symbol": true, "SymbolLock": true,

	Enter: true, Tab: true, Escape: true, Backspace: true, Delete: true,
	Insert: true, Home: true, End: true, PageUp: true, PageDown: true,

	ArrowUp: true, ArrowDown: true, ArrowLeft: true, ArrowRight: true,

	CapsLock: true, NumLock: true, ScrollLock: true, Pause: true,
	PrintScreen: true, ContextMenu: true, "Clear": true, "Help": true,
	"Again": true, "Undo": true, "Redo": true, "Cut": true, "Copy": true,
	"Paste": true, "Find": true, "Select": true, "Execute": true,
	"CrSel": true, "ExSel": true, "EraseEof": true, "Attn": true,

	"F1": true, "F2": true, "F3": true, "F4": true, "F5": true, "F6": true,
	"F7": true, "F8": true, "F9": true, "F10": true, "F11": true, "F12": true,
	"F13": true, "F14": true, "F15": true, "F16": true, "F17": true,
	"F18": true, "F19": true, "F20": true,

	"AudioVolumeUp": true, "AudioVolumeDown": true, "AudioVolumeMute": true,
	"MediaPlayPause": true, "MediaStop": true, "MediaTrackNext": true,
	"MediaTrackPrevious": true, "BrowserBack": true, "BrowserForward": true,
	"BrowserRefresh": true, "BrowserHome": true, "BrowserSearch": true,

	"Dead": true, Unidentified: true,
}

// shorthands maps lowercase shorthand names to canonical key names.
var shorthands = map[string]string{
	"shift":    Shift,
	"ctrl":     Control,
	"control":  Control,
	"alt":      Alt,
	"option":   Alt,
	"opt":      Alt,
	"meta":     Meta,
	"cmd":      Meta,
	"command":  Meta,
	"super":    Meta,
	"mod":      Meta,
	"enter":    Enter,
	"return":   Enter,
	"cr":       Enter,
	"tab":      Tab,
	"esc":      Escape,
	"escape":   Escape,
	"bs":       Backspace,
	"del":      Delete,
	"ins":      Insert,
	"pgup":     PageUp,
	"pgdn":     PageDown,
	"up":       ArrowUp,
	"down":     ArrowDown,
	"left":     ArrowLeft,
	"right":    ArrowRight,
	"space":    Space,
	"spacebar": Space,
	"plus":     Plus,
	"capslock": CapsLock,
	"menu":     ContextMenu,
}

// canonicalByLower indexes non-printable names case-insensitively.
var canonicalByLower = func() map[string]string {
	m := make(map[string]string, len(nonPrintable))
	for name := range nonPrintable {
		m[lower(name)] = name
	}
	return m
}()

// modifierNames lists the canonical modifier key names.
var modifierNames = map[string]bool{
	Shift:   true,
	Control: true,
	Alt:     true,
	Meta:    true,
}

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

func lower(s string) string { return lowerCaser.String(s) }

func upper(s string) string { return upperCaser.String(s) }

// StandardizeName returns the canonical spelling of a key name.
// Shorthands ("ctrl", "esc", "up") and case variants of known non-printable
// names ("enter", "ARROWUP") are rewritten; single characters and unknown
// names are returned unchanged.
func StandardizeName(name string) string {
	if name == "" {
		return name
	}
	if IsPrintable(name) {
		return name
	}
	l := lower(name)
	if canonical, ok := shorthands[l]; ok {
		return canonical
	}
	if canonical, ok := canonicalByLower[l]; ok {
		return canonical
	}
	return name
}

// IsPrintable reports whether name is a single printable character.
// A character is one grapheme cluster, so "é" written with a combining
// accent counts as one key.
func IsPrintable(name string) bool {
	if name == "" || uniseg.GraphemeClusterCount(name) != 1 {
		return false
	}
	for _, r := range name {
		if !unicode.IsPrint(r) && !unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}

// IsNonPrintable reports whether name is a recognised non-printable key.
func IsNonPrintable(name string) bool {
	return nonPrintable[name]
}

// IsValid reports whether name is a recognised key: a non-printable key,
// a single printable character, or one of the supplied custom names.
func IsValid(name string, custom map[string]bool) bool {
	return nonPrintable[name] || IsPrintable(name) || custom[name]
}

// IsModifier reports whether name is Shift, Control, Alt or Meta.
func IsModifier(name string) bool {
	return modifierNames[name]
}

// HasNativeKeypress reports whether hosts deliver a keypress transition for
// the key. Only character-producing keys (and Enter) do.
func HasNativeKeypress(name string) bool {
	return name == Enter || IsPrintable(name)
}

// KeyupHiddenByMeta reports whether macOS hosts swallow the keyup of name
// while the command key is held.
func KeyupHiddenByMeta(name string) bool {
	return !IsModifier(name) && name != "OS"
}
