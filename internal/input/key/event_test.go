package key

import (
	"errors"
	"testing"
)

func TestParseEventType(t *testing.T) {
	tests := []struct {
		in   string
		want EventType
	}{
		{"keydown", KeyDown},
		{"KeyPress", KeyPress},
		{" keyup ", KeyUp},
	}

	for _, tt := range tests {
		got, err := ParseEventType(tt.in)
		if err != nil {
			t.Errorf("ParseEventType(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEventType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseEventType("keyhold"); !errors.Is(err, ErrInvalidEventType) {
		t.Errorf("ParseEventType(keyhold) error = %v, want ErrInvalidEventType", err)
	}
}

func TestEventTypeString(t *testing.T) {
	for i, want := range []string{"keydown", "keypress", "keyup"} {
		if got := EventTypes[i].String(); got != want {
			t.Errorf("EventTypes[%d].String() = %q, want %q", i, got, want)
		}
	}
	if EventType(7).Valid() {
		t.Error("EventType(7).Valid() = true")
	}
}

func TestKeyStateAdvance(t *testing.T) {
	ks := NewKeyState(KeyDown, Seen)
	if !ks.Current.Triggered(KeyDown) {
		t.Fatal("new state should have keydown triggered")
	}
	if ks.Previous.Triggered(KeyDown) {
		t.Fatal("new state should have empty previous record")
	}

	next := ks.Advance(KeyPress, Simulated)
	if next.Previous != ks.Current {
		t.Errorf("Advance previous = %v, want %v", next.Previous, ks.Current)
	}
	if next.Current[KeyPress] != Simulated {
		t.Errorf("Advance current keypress = %v, want simulated", next.Current[KeyPress])
	}
	if ks.Current.Triggered(KeyPress) {
		t.Error("Advance mutated the original record")
	}
}

func TestTransitionString(t *testing.T) {
	tr := NewTransition("s", KeyDown, ModCtrl)
	if got, want := tr.String(), "keydown Control+s"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	tr = NewTransition(Shift, KeyUp, ModShift)
	if got, want := tr.String(), "keyup Shift"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
