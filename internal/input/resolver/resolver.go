// Package resolver decides which handler, if any, a key transition triggers.
//
// A Resolver is built over a snapshot of the active scopes, starting at the
// scope an event originated in and moving outward. It wires every declared
// action to the nearest scope that handles it, building one KeyMapMatcher
// per handler scope. Scopes are visited lazily: the walk stops as soon as
// the scope being searched has had all its handlers wired, so the common
// case of a match in the innermost scopes never compiles the outer ones.
package resolver

import (
	"github.com/dshills/keyscope/internal/input/history"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/input/scope"
)

// Config controls resolution.
type Config struct {
	// AllowCombinationSubmatches lets a binding match a live combination that
	// contains more keys than it names.
	AllowCombinationSubmatches bool

	// EnableHardSequences treats handler names that are valid key
	// expressions, and that no scope declares as an action, as implicit
	// bindings.
	EnableHardSequences bool

	// DefaultEvent is the event type of implicit bindings.
	DefaultEvent key.EventType

	// CustomNames are additional valid key names.
	CustomNames map[string]bool

	// HasAction reports whether any active scope declares an action.
	// Consulted for hard sequences.
	HasAction func(action string) bool
}

// Match is a resolved binding and the handler it runs.
type Match struct {
	Binding keymap.Binding
	Handler scope.Handler

	// Scope owns the handler.
	Scope *scope.Scope

	// Position is the handler scope's distance from the origin scope.
	Position int
}

type boundKey struct {
	action  string
	handler int
	event   key.EventType
}

type sequenceKey struct {
	sequence string
	event    key.EventType
}

type pendingBinding struct {
	binding    keymap.Binding
	declaredAt int
}

// Resolver incrementally wires the actions of a scope snapshot to handlers.
//
// Resolver is not safe for concurrent use.
type Resolver struct {
	cfg    Config
	scopes []*scope.Scope

	// cursor is the number of scopes visited so far.
	cursor   int
	matchers []*KeyMapMatcher

	// unsatisfied holds, per visited scope, the handler names no binding has
	// been wired to yet.
	unsatisfied []map[string]bool

	handlerScopes map[string][]int
	pending       map[string][]pendingBinding
	bound         map[boundKey]int
	sequences     map[sequenceKey]int
}

// New creates a resolver over scopes, ordered from the origin scope outward.
func New(scopes []*scope.Scope, cfg Config) *Resolver {
	return &Resolver{
		cfg:           cfg,
		scopes:        scopes,
		handlerScopes: make(map[string][]int),
		pending:       make(map[string][]pendingBinding),
		bound:         make(map[boundKey]int),
		sequences:     make(map[sequenceKey]int),
	}
}

// Len returns the number of scopes in the snapshot.
func (r *Resolver) Len() int {
	return len(r.scopes)
}

// Visited returns the number of scopes wired so far.
func (r *Resolver) Visited() int {
	return r.cursor
}

// Matcher returns the matcher of the scope at pos, visiting scopes outward
// until every handler of that scope is wired or the snapshot is exhausted.
// Returns nil for positions outside the snapshot.
func (r *Resolver) Matcher(pos int) *KeyMapMatcher {
	if pos < 0 || pos >= len(r.scopes) {
		return nil
	}
	for r.cursor < len(r.scopes) && (r.cursor <= pos || len(r.unsatisfied[pos]) > 0) {
		r.visit(r.cursor)
		r.cursor++
	}
	return r.matchers[pos]
}

// Find returns the binding of the scope at pos that the transition t of the
// live key name completes.
func (r *Resolver) Find(pos int, h *history.History, name string, t key.EventType) (Match, bool) {
	m := r.Matcher(pos)
	if m == nil || !m.HasMatchesFor(t) {
		return Match{}, false
	}
	s := m.find(h, name, t, r.cfg.AllowCombinationSubmatches)
	if s == nil {
		return Match{}, false
	}
	return Match{
		Binding:  s.binding,
		Handler:  s.handler,
		Scope:    r.scopes[pos],
		Position: pos,
	}, true
}

func (r *Resolver) visit(i int) {
	s := r.scopes[i]

	unsatisfied := make(map[string]bool, len(s.HandlerNames()))
	for _, name := range s.HandlerNames() {
		unsatisfied[name] = true
	}
	r.matchers = append(r.matchers, NewKeyMapMatcher())
	r.unsatisfied = append(r.unsatisfied, unsatisfied)

	for _, name := range s.HandlerNames() {
		r.handlerScopes[name] = append(r.handlerScopes[name], i)

		for _, p := range r.pending[name] {
			r.wire(p.binding, p.declaredAt, i)
		}
		delete(r.pending, name)

		if r.cfg.EnableHardSequences && !r.hasAction(name) {
			if b, ok := r.hardSequence(name); ok {
				r.wire(b, i, i)
			}
		}
	}

	table := s.Table()
	for _, name := range table.Actions() {
		if hs := r.handlerScopes[name]; len(hs) > 0 {
			for _, b := range table.Bindings(name) {
				r.wire(b, i, hs[0])
			}
			continue
		}
		for _, b := range table.Bindings(name) {
			r.pending[name] = append(r.pending[name], pendingBinding{binding: b, declaredAt: i})
		}
	}
}

// wire attaches b, declared in scope declaredAt, to the handler in scope hp.
// The nearest declaration of an action wins for a given handler scope and
// event type, and a key sequence belongs to the nearest handler scope.
func (r *Resolver) wire(b keymap.Binding, declaredAt, hp int) {
	bk := boundKey{action: b.Action, handler: hp, event: b.EventType}
	if d, ok := r.bound[bk]; ok && d != declaredAt {
		return
	}
	sk := sequenceKey{sequence: b.FullID(), event: b.EventType}
	if _, taken := r.sequences[sk]; taken {
		return
	}

	h, ok := r.scopes[hp].Handler(b.Action)
	if !ok {
		return
	}
	if !r.matchers[hp].Add(b, h) {
		return
	}

	r.bound[bk] = declaredAt
	r.sequences[sk] = hp
	delete(r.unsatisfied[hp], b.Action)
}

func (r *Resolver) hasAction(name string) bool {
	if r.cfg.HasAction != nil {
		return r.cfg.HasAction(name)
	}
	for _, s := range r.scopes {
		if s.Table().Has(name) {
			return true
		}
	}
	return false
}

// hardSequence builds the implicit binding of a handler named like a key
// expression. Names that do not parse are not hard sequences.
func (r *Resolver) hardSequence(name string) (keymap.Binding, bool) {
	b, err := keymap.NewBinding(name, name, key.ParseOptions{
		EventType:       r.cfg.DefaultEvent,
		EnsureValidKeys: true,
		CustomNames:     r.cfg.CustomNames,
	})
	if err != nil {
		return keymap.Binding{}, false
	}
	return b, true
}
