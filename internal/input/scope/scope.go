// Package scope maintains the priority list of active key map scopes.
//
// A scope is a region of the host application (a panel, a dialog, a text
// field) that declares actions and handlers while it is active. Scopes are
// ordered innermost first: position 0 is the scope with the highest priority.
// Each scope is stored as an immutable snapshot, so a dispatch in progress
// keeps seeing the scopes it started with even if a handler activates,
// updates or removes scopes.
package scope

import (
	"maps"
	"slices"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

// Handler is invoked when an action matches.
type Handler func(ev *Event)

// Event describes a matched action to its handler.
type Event struct {
	// Action is the matched action name.
	Action string

	// Scope is the id of the scope whose handler is running.
	Scope string

	// Binding is the binding that matched.
	Binding keymap.Binding

	// Key is the live key name whose transition completed the match.
	Key string

	// Transition is the raw transition being processed. For simulated
	// transitions it describes the synthesized event.
	Transition key.Transition

	// Simulated is set when the transition was synthesized by the engine.
	Simulated bool

	stopped bool
}

// StopPropagation prevents handlers in farther scopes from running for this
// transition.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// Options controls how a scope's key map is compiled.
type Options struct {
	// DefaultKeyEvent overrides the engine default event type for sequences
	// in this scope that do not name one.
	DefaultKeyEvent *key.EventType

	// Parent is the id of the enclosing scope. A scope with a parent is
	// placed immediately inside it; otherwise it becomes the innermost scope.
	Parent string
}

// Scope is an immutable snapshot of one active region.
type Scope struct {
	id       string
	table    *keymap.Table
	handlers map[string]Handler
	names    []string
	parent   string
}

func newScope(id string, table *keymap.Table, handlers map[string]Handler, parent string) *Scope {
	h := make(map[string]Handler, len(handlers))
	for name, fn := range handlers {
		if fn != nil {
			h[name] = fn
		}
	}
	return &Scope{
		id:       id,
		table:    table,
		handlers: h,
		names:    slices.Sorted(maps.Keys(h)),
		parent:   parent,
	}
}

// ID returns the scope id.
func (s *Scope) ID() string {
	return s.id
}

// Parent returns the id of the enclosing scope, if one was given.
func (s *Scope) Parent() string {
	return s.parent
}

// Table returns the compiled key map of the scope.
func (s *Scope) Table() *keymap.Table {
	return s.table
}

// Handler returns the handler for an action.
func (s *Scope) Handler(action string) (Handler, bool) {
	h, ok := s.handlers[action]
	return h, ok
}

// HandlerNames returns the names of actions this scope handles, sorted.
func (s *Scope) HandlerNames() []string {
	return s.names
}

// HasHandlers reports whether the scope handles any action.
func (s *Scope) HasHandlers() bool {
	return len(s.names) > 0
}
