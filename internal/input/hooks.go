package input

import (
	"slices"
	"sync"

	"github.com/dshills/keyscope/internal/input/key"
)

// Hook observes the engine's processing of key transitions.
type Hook interface {
	// PreTransition runs before a transition is recorded. Hooks may rewrite
	// the transition. Returning true consumes it: nothing is recorded and
	// nothing is dispatched.
	PreTransition(t *key.Transition) bool

	// PostTransition runs after a transition was processed. fired reports
	// whether any handler ran.
	PostTransition(t key.Transition, fired bool)

	// PreAction runs before a matched handler. Returning true consumes the
	// match: the handler does not run and propagation stops.
	PreAction(ev *Event) bool
}

// HookPriority defines the execution order for hooks.
// Lower values execute first.
type HookPriority int

const (
	// HookPriorityHighest runs before all other hooks.
	HookPriorityHighest HookPriority = -1000
	// HookPriorityHigh runs early in the hook chain.
	HookPriorityHigh HookPriority = -100
	// HookPriorityNormal is the default priority.
	HookPriorityNormal HookPriority = 0
	// HookPriorityLow runs late in the hook chain.
	HookPriorityLow HookPriority = 100
	// HookPriorityLowest runs after all other hooks.
	HookPriorityLowest HookPriority = 1000
)

// HookID uniquely identifies a registered hook.
type HookID uint64

// HookRegistration holds metadata about a registered hook.
type HookRegistration struct {
	ID       HookID
	Name     string
	Priority HookPriority
	Hook     Hook
}

// HookManager manages hooks with support for priorities and named registration.
//
// Registration is safe from any goroutine. Hooks themselves run on the
// goroutine that feeds the engine, outside the manager's lock, so a hook
// may register or remove hooks.
type HookManager struct {
	mu      sync.RWMutex
	hooks   []HookRegistration
	nextID  HookID
	sorted  bool
	enabled bool
}

// NewHookManager creates a new hook manager.
func NewHookManager() *HookManager {
	return &HookManager{enabled: true, sorted: true}
}

// Register adds a hook with default priority and no name.
func (m *HookManager) Register(hook Hook) HookID {
	return m.RegisterWithOptions(hook, "", HookPriorityNormal)
}

// RegisterNamed adds a hook with a name for later reference.
func (m *HookManager) RegisterNamed(hook Hook, name string) HookID {
	return m.RegisterWithOptions(hook, name, HookPriorityNormal)
}

// RegisterWithOptions adds a hook with all options specified. A hook
// registered under an existing name replaces it.
func (m *HookManager) RegisterWithOptions(hook Hook, name string, priority HookPriority) HookID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" {
		m.hooks = slices.DeleteFunc(m.hooks, func(r HookRegistration) bool { return r.Name == name })
	}

	m.nextID++
	m.hooks = append(m.hooks, HookRegistration{
		ID:       m.nextID,
		Name:     name,
		Priority: priority,
		Hook:     hook,
	})
	m.sorted = false
	return m.nextID
}

// Unregister removes a hook by ID.
func (m *HookManager) Unregister(id HookID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.hooks)
	m.hooks = slices.DeleteFunc(m.hooks, func(r HookRegistration) bool { return r.ID == id })
	return len(m.hooks) != n
}

// UnregisterByName removes a hook by name.
func (m *HookManager) UnregisterByName(name string) bool {
	if name == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.hooks)
	m.hooks = slices.DeleteFunc(m.hooks, func(r HookRegistration) bool { return r.Name == name })
	return len(m.hooks) != n
}

// GetByName returns a hook registration by name.
func (m *HookManager) GetByName(name string) (HookRegistration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.hooks {
		if r.Name == name && name != "" {
			return r, true
		}
	}
	return HookRegistration{}, false
}

// SetEnabled enables or disables all hooks.
func (m *HookManager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// IsEnabled returns whether hooks are enabled.
func (m *HookManager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Count returns the number of registered hooks.
func (m *HookManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks)
}

// List returns all hook registrations in execution order.
func (m *HookManager) List() []HookRegistration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureSorted()
	return slices.Clone(m.hooks)
}

// Clear removes all hooks.
func (m *HookManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = nil
	m.sorted = true
}

func (m *HookManager) ensureSorted() {
	if m.sorted {
		return
	}
	slices.SortStableFunc(m.hooks, func(a, b HookRegistration) int {
		return int(a.Priority) - int(b.Priority)
	})
	m.sorted = true
}

// snapshot returns the hooks to run, in priority order, copied so they can
// be called without holding the lock.
func (m *HookManager) snapshot() []Hook {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled || len(m.hooks) == 0 {
		return nil
	}
	m.ensureSorted()

	hooks := make([]Hook, len(m.hooks))
	for i := range m.hooks {
		hooks[i] = m.hooks[i].Hook
	}
	return hooks
}

// RunPreTransition runs all PreTransition hooks in priority order.
// Returns true if any hook consumed the transition.
func (m *HookManager) RunPreTransition(t *key.Transition) bool {
	for _, hook := range m.snapshot() {
		if hook.PreTransition(t) {
			return true
		}
	}
	return false
}

// RunPostTransition runs all PostTransition hooks in priority order.
func (m *HookManager) RunPostTransition(t key.Transition, fired bool) {
	for _, hook := range m.snapshot() {
		hook.PostTransition(t, fired)
	}
}

// RunPreAction runs all PreAction hooks in priority order.
// Returns true if any hook consumed the match.
func (m *HookManager) RunPreAction(ev *Event) bool {
	for _, hook := range m.snapshot() {
		if hook.PreAction(ev) {
			return true
		}
	}
	return false
}

// BaseHook provides a default implementation of the Hook interface.
// Embed this in custom hooks to only implement the methods you need.
type BaseHook struct{}

// PreTransition is a no-op that does not consume transitions.
func (BaseHook) PreTransition(*key.Transition) bool {
	return false
}

// PostTransition is a no-op.
func (BaseHook) PostTransition(key.Transition, bool) {}

// PreAction is a no-op that does not consume matches.
func (BaseHook) PreAction(*Event) bool {
	return false
}

// FuncHook wraps functions into a Hook interface implementation.
type FuncHook struct {
	PreTransitionFunc  func(*key.Transition) bool
	PostTransitionFunc func(key.Transition, bool)
	PreActionFunc      func(*Event) bool
}

// PreTransition calls the PreTransitionFunc if set.
func (h FuncHook) PreTransition(t *key.Transition) bool {
	if h.PreTransitionFunc != nil {
		return h.PreTransitionFunc(t)
	}
	return false
}

// PostTransition calls the PostTransitionFunc if set.
func (h FuncHook) PostTransition(t key.Transition, fired bool) {
	if h.PostTransitionFunc != nil {
		h.PostTransitionFunc(t, fired)
	}
}

// PreAction calls the PreActionFunc if set.
func (h FuncHook) PreAction(ev *Event) bool {
	if h.PreActionFunc != nil {
		return h.PreActionFunc(ev)
	}
	return false
}

// FilterHook consumes transitions or matches selected by predicates.
type FilterHook struct {
	BaseHook

	// TransitionFilter returns true to consume a transition.
	TransitionFilter func(key.Transition) bool

	// ActionFilter returns true to consume a match.
	ActionFilter func(*Event) bool
}

// PreTransition applies the transition filter.
func (h FilterHook) PreTransition(t *key.Transition) bool {
	if h.TransitionFilter != nil {
		return h.TransitionFilter(*t)
	}
	return false
}

// PreAction applies the action filter.
func (h FilterHook) PreAction(ev *Event) bool {
	if h.ActionFilter != nil {
		return h.ActionFilter(ev)
	}
	return false
}
