package resolver

import (
	"slices"
	"sort"

	"github.com/dshills/keyscope/internal/input/history"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/input/scope"
)

// slot is a binding wired to the handler that runs when it matches.
type slot struct {
	binding keymap.Binding
	handler scope.Handler
}

// entry is one final combination with a slot per event type.
type entry struct {
	id     string
	keys   []string
	size   int
	events [3]*slot
}

// SequenceMatcher holds the final combinations of every sequence that shares
// one prefix.
type SequenceMatcher struct {
	entries map[string]*entry

	// order lists entries by descending size, ties in insertion order, so
	// submatch search tries the most specific combination first.
	order  []*entry
	counts [3]int
}

// NewSequenceMatcher creates an empty matcher.
func NewSequenceMatcher() *SequenceMatcher {
	return &SequenceMatcher{entries: make(map[string]*entry)}
}

// Add wires b to h. It returns false when the combination already has a
// handler for b's event type.
func (m *SequenceMatcher) Add(b keymap.Binding, h scope.Handler) bool {
	e, ok := m.entries[b.ID]
	if !ok {
		e = &entry{id: b.ID, keys: b.Keys, size: b.Size}
		m.entries[b.ID] = e
		i := sort.Search(len(m.order), func(i int) bool { return m.order[i].size < e.size })
		m.order = slices.Insert(m.order, i, e)
	}
	if e.events[b.EventType] != nil {
		return false
	}
	e.events[b.EventType] = &slot{binding: b, handler: h}
	m.counts[b.EventType]++
	return true
}

// HasMatchesFor reports whether any combination is wired for event type t.
func (m *SequenceMatcher) HasMatchesFor(t key.EventType) bool {
	return m.counts[t] > 0
}

// Len returns the number of distinct final combinations.
func (m *SequenceMatcher) Len() int {
	return len(m.entries)
}

func (m *SequenceMatcher) find(c *history.Combination, name string, t key.EventType, submatches bool) *slot {
	if !m.HasMatchesFor(t) {
		return nil
	}
	if submatches {
		for _, e := range m.order {
			if s := e.events[t]; s != nil && completes(e, c, name, t) {
				return s
			}
		}
		return nil
	}
	for _, id := range c.IDs() {
		if e, ok := m.entries[id]; ok {
			if s := e.events[t]; s != nil && completes(e, c, name, t) {
				return s
			}
		}
	}
	return nil
}

// completes reports whether the transition t of the live key name completes
// combination e: every key of e has seen t, and name is one of them and saw
// t just now rather than on an earlier event.
func completes(e *entry, c *history.Combination, name string, t key.EventType) bool {
	fresh := false
	for _, k := range e.keys {
		if !c.IsEventTriggered(k, t) {
			return false
		}
		if c.NormalizedKeyName(k) == name && !c.WasEventPreviouslyTriggered(k, t) {
			fresh = true
		}
	}
	return fresh
}

// KeyMapMatcher holds every binding wired to one handler scope, grouped by
// sequence prefix.
type KeyMapMatcher struct {
	prefixes map[string]*SequenceMatcher

	// lengths are the distinct prefix lengths in combinations, longest first.
	lengths []int
	counts  [3]int
}

// NewKeyMapMatcher creates an empty matcher.
func NewKeyMapMatcher() *KeyMapMatcher {
	return &KeyMapMatcher{prefixes: make(map[string]*SequenceMatcher)}
}

// Add wires b to h. It returns false when the sequence is already wired for
// b's event type.
func (m *KeyMapMatcher) Add(b keymap.Binding, h scope.Handler) bool {
	sm, ok := m.prefixes[b.Prefix]
	if !ok {
		sm = NewSequenceMatcher()
		m.prefixes[b.Prefix] = sm
	}
	if !sm.Add(b, h) {
		return false
	}
	m.counts[b.EventType]++

	if n := b.SequenceLength - 1; n > 0 && !slices.Contains(m.lengths, n) {
		m.lengths = append(m.lengths, n)
		slices.SortFunc(m.lengths, func(a, b int) int { return b - a })
	}
	return true
}

// HasMatchesFor reports whether any binding is wired for event type t.
func (m *KeyMapMatcher) HasMatchesFor(t key.EventType) bool {
	return m.counts[t] > 0
}

// IsEmpty reports whether no binding is wired.
func (m *KeyMapMatcher) IsEmpty() bool {
	return m.counts == [3]int{}
}

func (m *KeyMapMatcher) find(h *history.History, name string, t key.EventType, submatches bool) *slot {
	current := h.Current()
	if current == nil || !m.HasMatchesFor(t) {
		return nil
	}

	// Longest prefix first; a failed probe falls through to shorter ones.
	for _, n := range m.lengths {
		prev := h.MostRecent(n)
		if len(prev) < n {
			continue
		}
		for _, prefix := range prefixIDs(prev) {
			sm, ok := m.prefixes[prefix]
			if !ok {
				continue
			}
			if s := sm.find(current, name, t, submatches); s != nil {
				return s
			}
		}
	}

	if sm, ok := m.prefixes[""]; ok {
		return sm.find(current, name, t, submatches)
	}
	return nil
}

// prefixIDs returns every way the given combinations can be written as a
// sequence prefix, canonical first.
func prefixIDs(combos []*history.Combination) []string {
	out := []string{""}
	for i, c := range combos {
		ids := c.IDs()
		next := make([]string, 0, len(out)*len(ids))
		for _, p := range out {
			for _, id := range ids {
				if i == 0 {
					next = append(next, id)
				} else {
					next = append(next, p+" "+id)
				}
			}
		}
		out = next
	}
	return out
}
