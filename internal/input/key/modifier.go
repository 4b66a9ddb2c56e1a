package key

import "strings"

// Modifier represents the modifier flags carried by a raw key event.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasMeta returns true if Meta is pressed.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns a human-readable representation like "Control+Alt".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	for _, mk := range ModifierKeys {
		if m.Has(mk.Mod) {
			parts = append(parts, mk.Name)
		}
	}
	return strings.Join(parts, "+")
}

// ModifierKey pairs a modifier flag with the canonical name of its key.
type ModifierKey struct {
	Mod  Modifier
	Name string
}

// ModifierKeys lists every modifier flag and its key, in reconciliation order.
var ModifierKeys = []ModifierKey{
	{ModCtrl, Control},
	{ModAlt, Alt},
	{ModShift, Shift},
	{ModMeta, Meta},
}

// ModifierForKey returns the flag reported while the named key is held.
// Returns ModNone for non-modifier keys.
func ModifierForKey(name string) Modifier {
	for _, mk := range ModifierKeys {
		if mk.Name == name {
			return mk.Mod
		}
	}
	if name == "OS" {
		return ModMeta
	}
	return ModNone
}
