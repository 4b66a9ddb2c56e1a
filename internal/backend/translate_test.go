package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input/key"
)

type step struct {
	key  string
	typ  key.EventType
	mods key.Modifier
}

func steps(ts []key.Transition) []step {
	out := make([]step, len(ts))
	for i, t := range ts {
		out[i] = step{t.Key, t.Type, t.Modifiers}
	}
	return out
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		name  string
		k     tcell.Key
		r     rune
		mod   tcell.ModMask
		want  string
		wantM key.Modifier
	}{
		{"rune", tcell.KeyRune, 'a', tcell.ModNone, "a", key.ModNone},
		{"upper rune", tcell.KeyRune, 'A', tcell.ModNone, "A", key.ModShift},
		{"alt rune", tcell.KeyRune, 'x', tcell.ModAlt, "x", key.ModAlt},
		{"space", tcell.KeyRune, ' ', tcell.ModNone, " ", key.ModNone},
		{"enter", tcell.KeyEnter, 0, tcell.ModNone, "Enter", key.ModNone},
		{"tab", tcell.KeyTab, 0, tcell.ModNone, "Tab", key.ModNone},
		{"shift tab", tcell.KeyTab, 0, tcell.ModShift, "Tab", key.ModShift},
		{"backtab", tcell.KeyBacktab, 0, tcell.ModNone, "Tab", key.ModShift},
		{"escape", tcell.KeyEscape, 0, tcell.ModNone, "Escape", key.ModNone},
		{"backspace", tcell.KeyBackspace2, 0, tcell.ModNone, "Backspace", key.ModNone},
		{"arrow", tcell.KeyUp, 0, tcell.ModCtrl, "ArrowUp", key.ModCtrl},
		{"function", tcell.KeyF5, 0, tcell.ModNone, "F5", key.ModNone},
		{"ctrl chord", tcell.KeyCtrlS, 0, tcell.ModNone, "s", key.ModCtrl},
		{"ctrl chord reported", tcell.KeyCtrlQ, 0, tcell.ModCtrl, "q", key.ModCtrl},
		{"ctrl space", tcell.KeyCtrlSpace, 0, tcell.ModNone, " ", key.ModCtrl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, mods, ok := KeyName(tcell.NewEventKey(tt.k, tt.r, tt.mod))
			require.True(t, ok)
			assert.Equal(t, tt.want, name)
			assert.Equal(t, tt.wantM, mods)
		})
	}
}

func TestKeyNameUnknown(t *testing.T) {
	_, _, ok := KeyName(tcell.NewEventKey(tcell.KeyF64, 0, tcell.ModNone))
	assert.False(t, ok)
	assert.Nil(t, Translate(tcell.NewEventKey(tcell.KeyF64, 0, tcell.ModNone)))
}

func TestTranslatePrintable(t *testing.T) {
	ts := Translate(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	assert.Equal(t, []step{
		{"a", key.KeyDown, key.ModNone},
		{"a", key.KeyPress, key.ModNone},
		{"a", key.KeyUp, key.ModNone},
	}, steps(ts))
	assert.Equal(t, int('a'), ts[0].Code)
	assert.False(t, ts[0].Timestamp.IsZero())
}

func TestTranslateNonPrintable(t *testing.T) {
	ts := Translate(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.Equal(t, []step{
		{"Escape", key.KeyDown, key.ModNone},
		{"Escape", key.KeyUp, key.ModNone},
	}, steps(ts))
}

func TestTranslateChord(t *testing.T) {
	ts := Translate(tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModAlt))
	ctrlAlt := key.ModCtrl | key.ModAlt
	assert.Equal(t, []step{
		{"Control", key.KeyDown, key.ModCtrl},
		{"Alt", key.KeyDown, ctrlAlt},
		{"s", key.KeyDown, ctrlAlt},
		{"s", key.KeyPress, ctrlAlt},
		{"s", key.KeyUp, ctrlAlt},
		{"Alt", key.KeyUp, key.ModCtrl},
		{"Control", key.KeyUp, key.ModNone},
	}, steps(ts))
}
