package scope

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

// Registry errors.
var (
	ErrUnknownScope   = errors.New("unknown scope")
	ErrDuplicateScope = errors.New("scope already active")
)

// ChangeFunc is called after the registry changes.
type ChangeFunc func(r *Registry)

// Registry holds the active scopes in priority order, innermost first.
//
// Registry is not safe for concurrent use; it is driven from the host's
// event loop like the engine that owns it.
type Registry struct {
	scopes []*Scope
	index  map[string]int

	// Longest sequence bookkeeping.
	longest      int
	longestOwner string

	actions map[string]int
	version uint64

	defaultEvent key.EventType
	customNames  map[string]bool

	subscribers []ChangeFunc
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaultEvent sets the event type used for sequences that do not name
// one and whose scope does not override it.
func WithDefaultEvent(t key.EventType) RegistryOption {
	return func(r *Registry) {
		r.defaultEvent = t
	}
}

// WithCustomNames adds key names accepted as valid in key maps.
func WithCustomNames(names map[string]bool) RegistryOption {
	return func(r *Registry) {
		r.customNames = names
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		index:        make(map[string]int),
		actions:      make(map[string]int),
		defaultEvent: key.KeyPress,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewID returns a fresh scope id for hosts that do not name their scopes.
func NewID() string {
	return uuid.NewString()
}

// Subscribe registers fn to be called after every change.
func (r *Registry) Subscribe(fn ChangeFunc) {
	r.subscribers = append(r.subscribers, fn)
}

// Add activates a scope. An empty id is replaced with a generated one; the
// id actually used is returned. Key maps are compiled eagerly so invalid key
// names surface here as errors wrapping key.ErrInvalidKeyName.
func (r *Registry) Add(id string, actions keymap.Map, handlers map[string]Handler, opts Options) (string, error) {
	if id == "" {
		id = NewID()
	}
	if _, ok := r.index[id]; ok {
		return "", fmt.Errorf("%w: %q", ErrDuplicateScope, id)
	}

	table, err := r.compile(actions, opts)
	if err != nil {
		return "", fmt.Errorf("scope %q: %w", id, err)
	}

	pos := 0
	if opts.Parent != "" {
		if p, ok := r.index[opts.Parent]; ok {
			pos = p
		}
	}

	s := newScope(id, table, handlers, opts.Parent)
	r.scopes = slices.Insert(r.scopes, pos, s)
	r.reindex(pos)
	r.countActions(table, 1)

	if table.Longest() > r.longest {
		r.longest = table.Longest()
		r.longestOwner = id
	}

	r.changed()
	return id, nil
}

// Update replaces the key map and handlers of an active scope, keeping its
// position. The previous snapshot is left untouched.
func (r *Registry) Update(id string, actions keymap.Map, handlers map[string]Handler, opts Options) error {
	pos, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScope, id)
	}

	table, err := r.compile(actions, opts)
	if err != nil {
		return fmt.Errorf("scope %q: %w", id, err)
	}

	old := r.scopes[pos]
	r.countActions(old.table, -1)
	r.countActions(table, 1)
	r.scopes[pos] = newScope(id, table, handlers, old.parent)

	switch {
	case table.Longest() > r.longest:
		r.longest = table.Longest()
		r.longestOwner = id
	case id == r.longestOwner && table.Longest() < r.longest:
		r.recomputeLongest()
	}

	r.changed()
	return nil
}

// Remove deactivates a scope.
func (r *Registry) Remove(id string) error {
	pos, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScope, id)
	}

	r.countActions(r.scopes[pos].table, -1)
	r.scopes = slices.Delete(r.scopes, pos, pos+1)
	delete(r.index, id)
	r.reindex(pos)

	if id == r.longestOwner {
		r.recomputeLongest()
	}

	r.changed()
	return nil
}

// Clear removes every scope.
func (r *Registry) Clear() {
	r.scopes = nil
	r.index = make(map[string]int)
	r.actions = make(map[string]int)
	r.longest = 0
	r.longestOwner = ""
	r.changed()
}

// Position returns the priority position of a scope, 0 being innermost.
func (r *Registry) Position(id string) (int, bool) {
	pos, ok := r.index[id]
	return pos, ok
}

// At returns the scope at a position.
func (r *Registry) At(pos int) *Scope {
	if pos < 0 || pos >= len(r.scopes) {
		return nil
	}
	return r.scopes[pos]
}

// Get returns the scope with the given id.
func (r *Registry) Get(id string) (*Scope, bool) {
	pos, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.scopes[pos], true
}

// Len returns the number of active scopes.
func (r *Registry) Len() int {
	return len(r.scopes)
}

// Snapshot returns the scopes from position start outward. The returned
// slice is a copy; later registry changes do not affect it.
func (r *Registry) Snapshot(start int) []*Scope {
	if start < 0 || start >= len(r.scopes) {
		return nil
	}
	return slices.Clone(r.scopes[start:])
}

// IDs returns the scope ids in priority order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.scopes))
	for i, s := range r.scopes {
		ids[i] = s.id
	}
	return ids
}

// LongestSequence returns the number of combinations in the longest
// sequence declared by any active scope, at least 1.
func (r *Registry) LongestSequence() int {
	return max(r.longest, 1)
}

// HasAction reports whether any active scope declares action.
func (r *Registry) HasAction(action string) bool {
	return r.actions[action] > 0
}

// ActionSet returns a copy of the set of actions declared by active scopes.
func (r *Registry) ActionSet() map[string]bool {
	set := make(map[string]bool, len(r.actions))
	for name := range r.actions {
		set[name] = true
	}
	return set
}

// Version increases on every change.
func (r *Registry) Version() uint64 {
	return r.version
}

// DefaultEvent returns the registry-wide default event type.
func (r *Registry) DefaultEvent() key.EventType {
	return r.defaultEvent
}

// CustomNames returns the extra key names accepted in key maps.
func (r *Registry) CustomNames() map[string]bool {
	return r.customNames
}

func (r *Registry) compile(actions keymap.Map, opts Options) (*keymap.Table, error) {
	event := r.defaultEvent
	if opts.DefaultKeyEvent != nil {
		event = *opts.DefaultKeyEvent
	}
	return keymap.Compile(actions, keymap.Options{
		DefaultEvent: event,
		CustomNames:  r.customNames,
	})
}

func (r *Registry) reindex(from int) {
	for i := from; i < len(r.scopes); i++ {
		r.index[r.scopes[i].id] = i
	}
}

func (r *Registry) countActions(t *keymap.Table, delta int) {
	for _, name := range t.Actions() {
		r.actions[name] += delta
		if r.actions[name] <= 0 {
			delete(r.actions, name)
		}
	}
}

func (r *Registry) recomputeLongest() {
	r.longest = 0
	r.longestOwner = ""
	for _, s := range r.scopes {
		if n := s.table.Longest(); n > r.longest {
			r.longest = n
			r.longestOwner = s.id
		}
	}
}

func (r *Registry) changed() {
	r.version++
	for _, fn := range r.subscribers {
		fn(r)
	}
}
