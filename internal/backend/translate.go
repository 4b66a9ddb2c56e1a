package backend

import (
	"slices"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyscope/internal/input/key"
)

// namedKeys maps tcell special keys to canonical key names. Control
// characters that double as named keys (Tab, Enter, Backspace, Escape) are
// listed here so they are not reported as Control chords.
var namedKeys = map[tcell.Key]string{
	tcell.KeyEnter:      key.Enter,
	tcell.KeyTab:        key.Tab,
	tcell.KeyEscape:     key.Escape,
	tcell.KeyBackspace:  key.Backspace,
	tcell.KeyBackspace2: key.Backspace,
	tcell.KeyDelete:     key.Delete,
	tcell.KeyInsert:     key.Insert,
	tcell.KeyHome:       key.Home,
	tcell.KeyEnd:        key.End,
	tcell.KeyPgUp:       key.PageUp,
	tcell.KeyPgDn:       key.PageDown,
	tcell.KeyUp:         key.ArrowUp,
	tcell.KeyDown:       key.ArrowDown,
	tcell.KeyLeft:       key.ArrowLeft,
	tcell.KeyRight:      key.ArrowRight,
	tcell.KeyPause:      key.Pause,
	tcell.KeyPrint:      key.PrintScreen,
	tcell.KeyClear:      "Clear",
	tcell.KeyHelp:       "Help",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF6:         "F6",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
	tcell.KeyF13:        "F13",
	tcell.KeyF14:        "F14",
	tcell.KeyF15:        "F15",
	tcell.KeyF16:        "F16",
	tcell.KeyF17:        "F17",
	tcell.KeyF18:        "F18",
	tcell.KeyF19:        "F19",
	tcell.KeyF20:        "F20",
}

// convertMod converts tcell modifier flags.
func convertMod(m tcell.ModMask) key.Modifier {
	var mod key.Modifier
	if m&tcell.ModShift != 0 {
		mod = mod.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mod = mod.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mod = mod.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mod = mod.With(key.ModMeta)
	}
	return mod
}

// KeyName returns the canonical name and modifiers of a tcell key event.
// ok is false for keys with no name.
func KeyName(ev *tcell.EventKey) (name string, mods key.Modifier, ok bool) {
	mods = convertMod(ev.Modifiers())
	k := ev.Key()

	if k == tcell.KeyRune {
		r := ev.Rune()
		if unicode.IsUpper(r) {
			mods = mods.With(key.ModShift)
		}
		return string(r), mods, true
	}
	if k == tcell.KeyBacktab {
		return key.Tab, mods.With(key.ModShift), true
	}
	if name, ok := namedKeys[k]; ok {
		return name, mods, true
	}

	// Terminals deliver Control chords as ASCII control characters.
	switch {
	case k == tcell.KeyCtrlSpace:
		return key.Space, mods.With(key.ModCtrl), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return string(rune('a' + int(k-tcell.KeyCtrlA))), mods.With(key.ModCtrl), true
	}
	return "", mods, false
}

// Translate expands a tcell key event into the transitions a keyboard would
// have produced: modifier keydowns, the key's keydown, keypress (for keys
// that produce one) and keyup, then modifier keyups in reverse order.
//
// Terminals report a key only once it is typed, so every translated key is
// released immediately.
func Translate(ev *tcell.EventKey) []key.Transition {
	name, mods, ok := KeyName(ev)
	if !ok {
		return nil
	}

	code := int(ev.Key())
	if ev.Key() == tcell.KeyRune {
		code = int(ev.Rune())
	}

	var held []key.ModifierKey
	for _, mk := range key.ModifierKeys {
		if mods.Has(mk.Mod) {
			held = append(held, mk)
		}
	}

	out := make([]key.Transition, 0, 2*len(held)+3)
	emit := func(name string, code int, t key.EventType, m key.Modifier) {
		out = append(out, key.Transition{
			Key:       name,
			Code:      code,
			Type:      t,
			Modifiers: m,
			Timestamp: ev.When(),
		})
	}

	var cur key.Modifier
	for _, mk := range held {
		cur = cur.With(mk.Mod)
		emit(mk.Name, 0, key.KeyDown, cur)
	}

	emit(name, code, key.KeyDown, mods)
	if key.HasNativeKeypress(name) {
		emit(name, code, key.KeyPress, mods)
	}
	emit(name, code, key.KeyUp, mods)

	for _, mk := range slices.Backward(held) {
		cur = cur.Without(mk.Mod)
		emit(mk.Name, 0, key.KeyUp, cur)
	}
	return out
}
