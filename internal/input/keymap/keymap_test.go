package keymap

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/keyscope/internal/input/key"
)

func TestCompileForms(t *testing.T) {
	m := Map{
		"SAVE":   Keys("ctrl+s"),
		"MOVE":   Keys("up", "k"),
		"DELETE": Sequences(On(key.KeyUp, "d d")),
		"HELP":   Keys("?").WithName("Help").WithGroup("General").WithDescription("Show help"),
	}

	table, err := Compile(m, Options{DefaultEvent: key.KeyPress})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if got, want := table.Actions(), []string{"DELETE", "HELP", "MOVE", "SAVE"}; !slices.Equal(got, want) {
		t.Errorf("Actions() = %v, want %v", got, want)
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}

	save := table.Bindings("SAVE")
	if len(save) != 1 {
		t.Fatalf("SAVE bindings = %d, want 1", len(save))
	}
	if save[0].ID != "Control+s" || save[0].EventType != key.KeyPress {
		t.Errorf("SAVE binding = %+v", save[0])
	}

	move := table.Bindings("MOVE")
	if len(move) != 2 || move[0].ID != "ArrowUp" || move[1].ID != "k" {
		t.Errorf("MOVE bindings = %+v", move)
	}

	del := table.Bindings("DELETE")
	if len(del) != 1 {
		t.Fatalf("DELETE bindings = %d, want 1", len(del))
	}
	if del[0].Prefix != "d" || del[0].ID != "d" || del[0].SequenceLength != 2 || del[0].EventType != key.KeyUp {
		t.Errorf("DELETE binding = %+v", del[0])
	}
	if del[0].FullID() != "d d" {
		t.Errorf("FullID() = %q, want %q", del[0].FullID(), "d d")
	}

	help, ok := table.Action("HELP")
	if !ok || help.Name != "Help" || help.Group != "General" || help.Description != "Show help" {
		t.Errorf("Action(HELP) = %+v, %v", help, ok)
	}

	if table.Longest() != 2 {
		t.Errorf("Longest() = %d, want 2", table.Longest())
	}
	if !table.Has("SAVE") || table.Has("OPEN") {
		t.Error("Has() reported wrong membership")
	}
}

func TestCompileInvalidKeyName(t *testing.T) {
	_, err := Compile(Map{"BAD": Keys("ctrl+bogus")}, Options{})
	if !errors.Is(err, key.ErrInvalidKeyName) {
		t.Errorf("Compile() error = %v, want ErrInvalidKeyName", err)
	}
}

func TestCompileInvalidEvent(t *testing.T) {
	_, err := Compile(Map{"BAD": Sequences(Sequence{Sequence: "a", Event: "keyhold"})}, Options{})
	if !errors.Is(err, key.ErrInvalidEventType) {
		t.Errorf("Compile() error = %v, want ErrInvalidEventType", err)
	}
}

func TestCompileCustomNames(t *testing.T) {
	opts := Options{CustomNames: map[string]bool{"Launch": true}}
	if _, err := Compile(Map{"LAUNCH": Keys("Launch")}, opts); err != nil {
		t.Errorf("Compile() error = %v", err)
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if table.Len() != 0 || table.Longest() != 0 || table.Has("x") || table.Actions() != nil {
		t.Error("nil table should behave as empty")
	}
}

func TestBindingString(t *testing.T) {
	b, err := NewBinding("SAVE", "ctrl+s", key.ParseOptions{EventType: key.KeyDown})
	if err != nil {
		t.Fatalf("NewBinding() error = %v", err)
	}
	if got, want := b.String(), "SAVE: Control+s (keydown)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on invalid key map")
		}
	}()
	MustCompile(Map{"BAD": Keys("nope")}, Options{})
}
