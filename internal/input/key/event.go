package key

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidEventType is returned when an event type name is not recognised.
var ErrInvalidEventType = errors.New("invalid key event type")

// EventType identifies one of the three transitions a key goes through.
type EventType uint8

const (
	// KeyDown is delivered when a key is first pressed.
	KeyDown EventType = iota

	// KeyPress is delivered when a pressed key produces a character.
	KeyPress

	// KeyUp is delivered when a key is released.
	KeyUp
)

// EventTypes lists every event type in transition order.
var EventTypes = [...]EventType{KeyDown, KeyPress, KeyUp}

var eventTypeNames = [...]string{"keydown", "keypress", "keyup"}

// String returns the lowercase name of the event type.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("EventType(%d)", t)
}

// Valid reports whether t is one of the three known event types.
func (t EventType) Valid() bool {
	return int(t) < len(eventTypeNames)
}

// ParseEventType parses "keydown", "keypress" or "keyup" (case-insensitive).
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keydown":
		return KeyDown, nil
	case "keypress":
		return KeyPress, nil
	case "keyup":
		return KeyUp, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidEventType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEventType, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(text []byte) error {
	v, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// State records whether a transition was observed for a key.
type State uint8

const (
	// Unseen means the transition has not happened.
	Unseen State = iota

	// Seen means the host delivered the transition.
	Seen

	// Simulated means the engine synthesized the transition.
	Simulated
)

// StateFor returns Simulated or Seen.
func StateFor(simulated bool) State {
	if simulated {
		return Simulated
	}
	return Seen
}

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unseen:
		return "unseen"
	case Seen:
		return "seen"
	case Simulated:
		return "simulated"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Record holds the state of each event type for one key.
// It is an array so assignment copies it.
type Record [3]State

// With returns a copy of r with the slot for t set to s.
func (r Record) With(t EventType, s State) Record {
	r[t] = s
	return r
}

// Triggered reports whether the transition t happened, seen or simulated.
func (r Record) Triggered(t EventType) bool {
	return r[t] != Unseen
}

// KeyState is the previous and current record of a key within one
// combination. Previous holds the record as it was before the most recent
// transition, which lets matchers tell a fresh transition from a stale one.
type KeyState struct {
	Previous Record
	Current  Record
}

// NewKeyState returns the state of a key that has just seen transition t.
func NewKeyState(t EventType, s State) KeyState {
	return KeyState{Current: Record{}.With(t, s)}
}

// Advance returns the state after transition t: the current record becomes
// the previous one and the new current record gains t.
func (k KeyState) Advance(t EventType, s State) KeyState {
	return KeyState{Previous: k.Current, Current: k.Current.With(t, s)}
}

// Transition is a single raw key transition delivered by the host.
type Transition struct {
	// Key is the key name as reported by the host ("a", "Enter", "Shift").
	Key string

	// Code is the raw key code; consulted for custom key aliases.
	Code int

	// Type is the transition type.
	Type EventType

	// Modifiers are the modifier flags the host reported with the event.
	Modifiers Modifier

	// Origin is the id of the innermost scope the event originated in.
	// Empty means the innermost registered scope.
	Origin string

	// Target is a host-defined tag for the element that received the event,
	// consulted by ignore conditions.
	Target string

	// Repeat is set for auto-repeat transitions while a key is held down.
	Repeat bool

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewTransition creates a transition with the current timestamp.
func NewTransition(name string, t EventType, mods Modifier) Transition {
	return Transition{
		Key:       name,
		Type:      t,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// String returns a representation like "keydown Control+s".
func (t Transition) String() string {
	var sb strings.Builder
	sb.WriteString(t.Type.String())
	sb.WriteByte(' ')
	if mods := t.Modifiers.Without(ModifierForKey(t.Key)); !mods.IsEmpty() {
		sb.WriteString(mods.String())
		sb.WriteByte('+')
	}
	sb.WriteString(t.Key)
	if t.Repeat {
		sb.WriteString(" (repeat)")
	}
	return sb.String()
}
