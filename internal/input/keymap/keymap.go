package keymap

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dshills/keyscope/internal/input/key"
)

// ErrInvalidForm is returned when a key map entry has an unsupported shape.
var ErrInvalidForm = errors.New("invalid key map entry")

// Sequence is one key expression for an action, optionally pinned to an
// event type.
type Sequence struct {
	// Sequence is the key expression, e.g. "g g" or "control+s".
	Sequence string

	// Event is "keydown", "keypress" or "keyup". Empty means the default
	// event type of the registering scope.
	Event string
}

// On returns a sequence bound to a specific event type.
func On(event key.EventType, seq string) Sequence {
	return Sequence{Sequence: seq, Event: event.String()}
}

// Action declares the sequences of one action plus optional metadata shown
// in application key maps.
type Action struct {
	Sequences   []Sequence
	Name        string
	Group       string
	Description string
}

// Keys returns an action triggered by any of the given key expressions.
func Keys(seqs ...string) Action {
	a := Action{Sequences: make([]Sequence, 0, len(seqs))}
	for _, s := range seqs {
		a.Sequences = append(a.Sequences, Sequence{Sequence: s})
	}
	return a
}

// Sequences returns an action triggered by any of the given sequences.
func Sequences(seqs ...Sequence) Action {
	return Action{Sequences: seqs}
}

// WithName sets the display name of the action.
func (a Action) WithName(name string) Action {
	a.Name = name
	return a
}

// WithGroup sets the group the action is listed under.
func (a Action) WithGroup(group string) Action {
	a.Group = group
	return a
}

// WithDescription sets the description of the action.
func (a Action) WithDescription(desc string) Action {
	a.Description = desc
	return a
}

// Map maps action names to their declarations.
type Map map[string]Action

// Options controls how a Map is compiled.
type Options struct {
	// DefaultEvent is used for sequences without an explicit event type.
	DefaultEvent key.EventType

	// CustomNames are additional valid key names.
	CustomNames map[string]bool
}

// Table is a compiled key map: every action's sequences parsed into bindings.
// A Table is immutable once compiled.
type Table struct {
	actions  []string
	bindings map[string][]Binding
	meta     map[string]Action
	longest  int
}

// Compile parses every sequence in m. An unrecognised key name returns an
// error wrapping key.ErrInvalidKeyName that names the offending action.
func Compile(m Map, opts Options) (*Table, error) {
	t := &Table{
		actions:  slices.Sorted(maps.Keys(m)),
		bindings: make(map[string][]Binding, len(m)),
		meta:     make(map[string]Action, len(m)),
	}

	for _, name := range t.actions {
		action := m[name]
		t.meta[name] = action

		bindings := make([]Binding, 0, len(action.Sequences))
		for _, seq := range action.Sequences {
			event := opts.DefaultEvent
			if seq.Event != "" {
				e, err := key.ParseEventType(seq.Event)
				if err != nil {
					return nil, fmt.Errorf("action %q: %w", name, err)
				}
				event = e
			}

			b, err := NewBinding(name, seq.Sequence, key.ParseOptions{
				EventType:       event,
				EnsureValidKeys: true,
				CustomNames:     opts.CustomNames,
			})
			if err != nil {
				return nil, fmt.Errorf("action %q: %w", name, err)
			}

			bindings = append(bindings, b)
			t.longest = max(t.longest, b.SequenceLength)
		}
		t.bindings[name] = bindings
	}

	return t, nil
}

// MustCompile compiles m and panics on error.
// Use only for static initialization or tests.
func MustCompile(m Map, opts Options) *Table {
	t, err := Compile(m, opts)
	if err != nil {
		panic(err)
	}
	return t
}

// Actions returns the action names, sorted.
func (t *Table) Actions() []string {
	if t == nil {
		return nil
	}
	return t.actions
}

// Bindings returns the bindings of an action in declaration order.
func (t *Table) Bindings(action string) []Binding {
	if t == nil {
		return nil
	}
	return t.bindings[action]
}

// Has reports whether the table declares action.
func (t *Table) Has(action string) bool {
	if t == nil {
		return false
	}
	_, ok := t.bindings[action]
	return ok
}

// Action returns the declaration of an action, including its metadata.
func (t *Table) Action(name string) (Action, bool) {
	if t == nil {
		return Action{}, false
	}
	a, ok := t.meta[name]
	return a, ok
}

// Len returns the number of actions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.actions)
}

// Longest returns the number of combinations in the longest sequence.
func (t *Table) Longest() int {
	if t == nil {
		return 0
	}
	return t.longest
}
