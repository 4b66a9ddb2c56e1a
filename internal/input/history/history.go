package history

import (
	"strings"

	"github.com/dshills/keyscope/internal/input/key"
)

// History is a bounded list of key combinations, oldest first.
//
// History is not safe for concurrent use.
type History struct {
	records   []*Combination
	maxLength int
}

// New creates a history holding at most maxLength combinations.
// A maxLength below 1 is treated as 1.
func New(maxLength int) *History {
	return &History{maxLength: max(maxLength, 1)}
}

// MaxLength returns the current bound. Right after the bound shrinks, Len
// may exceed it; the next StartNew evicts down to the bound, and stored
// combinations are never rewritten to enforce it sooner.
func (h *History) MaxLength() int {
	return h.maxLength
}

// SetMaxLength changes the bound. Shrinking does not drop stored
// combinations; it only limits growth when the next combination starts.
func (h *History) SetMaxLength(n int) {
	h.maxLength = max(n, 1)
}

// Len returns the number of stored combinations.
func (h *History) Len() int {
	return len(h.records)
}

// IsEmpty returns true if no combination has been recorded.
func (h *History) IsEmpty() bool {
	return len(h.records) == 0
}

// Current returns the most recent combination, or nil when empty.
func (h *History) Current() *Combination {
	if len(h.records) == 0 {
		return nil
	}
	return h.records[len(h.records)-1]
}

// MostRecent returns up to n combinations preceding the current one,
// oldest first.
func (h *History) MostRecent(n int) []*Combination {
	end := len(h.records) - 1
	if end <= 0 || n <= 0 {
		return nil
	}
	start := max(end-n, 0)
	return h.records[start:end]
}

// AllKeysAreReleased reports whether the current combination has ended.
// An empty history counts as released.
func (h *History) AllKeysAreReleased() bool {
	c := h.Current()
	return c == nil || c.HasEnded()
}

// AddKeyToCurrent records transition t for the named key in the current
// combination, starting one if the history is empty.
func (h *History) AddKeyToCurrent(name string, t key.EventType, s key.State) {
	c := h.Current()
	if c == nil {
		h.StartNew(name, s)
		if t != key.KeyDown {
			h.Current().SetKeyState(name, t, s)
		}
		return
	}
	c.SetKeyState(name, t, s)
}

// StartNew begins a new combination containing the keys still pressed in the
// current one plus the named key, evicting the oldest combinations so the
// history stays within its bound.
func (h *History) StartNew(name string, s key.State) {
	var seed map[string]key.KeyState
	if c := h.Current(); c != nil {
		seed = c.KeysStillPressed()
	}

	next := NewCombination(seed)
	next.AddKey(name, key.KeyDown, s)

	if over := len(h.records) - h.maxLength + 1; over > 0 {
		h.records = append(h.records[:0:0], h.records[over:]...)
	}
	h.records = append(h.records, next)
}

// Reset discards every stored combination.
func (h *History) Reset() {
	h.records = nil
}

// Describe returns the canonical IDs of every stored combination, oldest
// first, separated by spaces.
func (h *History) Describe() string {
	ids := make([]string, len(h.records))
	for i, c := range h.records {
		ids[i] = c.Describe()
	}
	return strings.Join(ids, " ")
}
