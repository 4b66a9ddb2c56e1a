// Package history tracks the key combinations the user has recently pressed.
//
// A Combination is a set of keys held together, each with a record of which
// transitions (keydown, keypress, keyup) it has gone through. A History is a
// bounded list of combinations, most recent last, from which the resolver
// reads both the live combination and the prefix of multi-combination
// sequences.
package history

import (
	"maps"
	"slices"
	"strings"

	"github.com/dshills/keyscope/internal/input/key"
)

// Combination is a set of keys pressed together.
//
// Combination IDs and the alias lookup are derived data: they are recomputed
// on every mutation so they always reflect the key set.
type Combination struct {
	keys    map[string]key.KeyState
	ids     []string
	aliases map[string]string
}

// NewCombination creates a combination seeded with the given key states.
// The states are copied.
func NewCombination(seed map[string]key.KeyState) *Combination {
	c := &Combination{keys: make(map[string]key.KeyState, len(seed)+1)}
	maps.Copy(c.keys, seed)
	c.refresh()
	return c
}

// SetKeyState records transition t for the named key. A key already in the
// combination advances its state; a new key joins with a fresh record that
// includes the keydown slot.
func (c *Combination) SetKeyState(name string, t key.EventType, s key.State) {
	if ks, ok := c.keys[name]; ok {
		c.set(name, ks.Advance(t, s))
		return
	}
	c.AddKey(name, t, s)
}

// AddKey adds a key that was not part of the combination.
func (c *Combination) AddKey(name string, t key.EventType, s key.State) {
	ks := key.NewKeyState(key.KeyDown, s)
	if t != key.KeyDown {
		ks.Current = ks.Current.With(t, s)
	}
	c.set(name, ks)
}

// set is the single mutation entry point.
func (c *Combination) set(name string, ks key.KeyState) {
	_, existed := c.keys[name]
	c.keys[name] = ks
	if !existed {
		c.refresh()
	}
}

func (c *Combination) refresh() {
	names := c.Keys()
	c.ids = key.SerializeCombination(names)
	c.aliases = key.AliasIndex(names)
}

// Keys returns the key names in the combination, sorted.
func (c *Combination) Keys() []string {
	return slices.Sorted(maps.Keys(c.keys))
}

// NumKeys returns the number of keys in the combination.
func (c *Combination) NumKeys() int {
	return len(c.keys)
}

// IDs returns every ID the combination can be matched by, canonical first.
func (c *Combination) IDs() []string {
	return c.ids
}

// Describe returns the canonical combination ID.
func (c *Combination) Describe() string {
	if len(c.ids) == 0 {
		return ""
	}
	return c.ids[0]
}

// NormalizedKeyName returns the name of the live key that name stands for,
// resolving aliases. Unknown names are returned unchanged.
func (c *Combination) NormalizedKeyName(name string) string {
	if k, ok := c.aliases[name]; ok {
		return k
	}
	return name
}

// State returns the state of the named key, resolving aliases.
func (c *Combination) State(name string) (key.KeyState, bool) {
	if ks, ok := c.keys[name]; ok {
		return ks, true
	}
	if k, ok := c.aliases[name]; ok {
		ks, ok := c.keys[k]
		return ks, ok
	}
	return key.KeyState{}, false
}

// IsKeyIncluded reports whether name, or a key it is an alias of, is part of
// the combination.
func (c *Combination) IsKeyIncluded(name string) bool {
	_, ok := c.State(name)
	return ok
}

// IsEventTriggered reports whether transition t has happened for name.
func (c *Combination) IsEventTriggered(name string, t key.EventType) bool {
	ks, ok := c.State(name)
	return ok && ks.Current.Triggered(t)
}

// WasEventPreviouslyTriggered reports whether transition t had already
// happened for name before its most recent transition.
func (c *Combination) WasEventPreviouslyTriggered(name string, t key.EventType) bool {
	ks, ok := c.State(name)
	return ok && ks.Previous.Triggered(t)
}

// IsKeyReleased reports whether name has seen its keyup.
func (c *Combination) IsKeyReleased(name string) bool {
	return c.IsEventTriggered(name, key.KeyUp)
}

// IsKeyStillPressed reports whether name has been pressed and not released.
// A key counts as pressed once its keypress is seen, or its keydown when no
// keypress was delivered.
func (c *Combination) IsKeyStillPressed(name string) bool {
	ks, ok := c.State(name)
	if !ok || ks.Current.Triggered(key.KeyUp) {
		return false
	}
	return ks.Current.Triggered(key.KeyPress) || ks.Current.Triggered(key.KeyDown)
}

// IsKeypressSimulated reports whether the keypress of name was synthesized.
func (c *Combination) IsKeypressSimulated(name string) bool {
	ks, ok := c.State(name)
	return ok && ks.Current[key.KeyPress] == key.Simulated
}

// IsKeyupSimulated reports whether the keyup of name was synthesized.
func (c *Combination) IsKeyupSimulated(name string) bool {
	ks, ok := c.State(name)
	return ok && ks.Current[key.KeyUp] == key.Simulated
}

// KeysStillPressed returns the states of every key not yet released.
func (c *Combination) KeysStillPressed() map[string]key.KeyState {
	out := make(map[string]key.KeyState)
	for name, ks := range c.keys {
		if c.IsKeyStillPressed(name) {
			out[name] = ks
		}
	}
	return out
}

// HasEnded reports whether every key in the combination has been released.
func (c *Combination) HasEnded() bool {
	for name := range c.keys {
		if c.IsKeyStillPressed(name) {
			return false
		}
	}
	return true
}

// String returns a debug representation listing each key's current record.
func (c *Combination) String() string {
	var sb strings.Builder
	for i, name := range c.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		r := c.keys[name].Current
		sb.WriteString(name)
		sb.WriteByte('[')
		for j, t := range key.EventTypes {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(r[t].String())
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
