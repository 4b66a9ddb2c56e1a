package input

import (
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/dshills/keyscope/internal/input/history"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/input/resolver"
	"github.com/dshills/keyscope/internal/input/scope"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine closed")

// Handler is invoked when an action matches.
type Handler = scope.Handler

// Event describes a matched action to its handler.
type Event = scope.Event

// ScopeOptions controls how a scope's key map is compiled and where the
// scope is placed.
type ScopeOptions = scope.Options

// Engine turns raw key transitions into handler invocations.
//
// An Engine is driven synchronously from the host's event loop and is not
// safe for concurrent use. Handlers may activate, update or remove scopes,
// and may feed further transitions, while a dispatch is in progress.
type Engine struct {
	config   Config
	logger   *slog.Logger
	registry *scope.Registry
	history  *history.History
	hooks    *HookManager
	metrics  *Metrics

	// resolvers caches one resolver per origin position for the registry
	// version it was built against.
	resolvers       map[int]*resolver.Resolver
	resolverVersion uint64

	closed bool
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !cfg.DefaultKeyEvent.Valid() {
		cfg.DefaultKeyEvent = key.KeyPress
	}

	e := &Engine{
		config: cfg,
		logger: logger,
		registry: scope.NewRegistry(
			scope.WithDefaultEvent(cfg.DefaultKeyEvent),
			scope.WithCustomNames(cfg.customNames()),
		),
		hooks:     NewHookManager(),
		metrics:   NewMetrics(),
		resolvers: make(map[int]*resolver.Resolver),
	}
	e.history = history.New(e.registry.LongestSequence())
	e.registry.Subscribe(e.scopesChanged)
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Hooks returns the hook manager.
func (e *Engine) Hooks() *HookManager {
	return e.hooks
}

// Metrics returns the metrics tracker.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// History returns the key combination history. Callers must not modify it.
func (e *Engine) History() *history.History {
	return e.history
}

// Scopes returns the active scope ids, innermost first.
func (e *Engine) Scopes() []string {
	return e.registry.IDs()
}

// NotifyScopeActive activates a scope with its actions and handlers. An empty
// id is replaced with a generated one; the id in use is returned. Invalid
// key names in actions return an error wrapping key.ErrInvalidKeyName.
func (e *Engine) NotifyScopeActive(id string, actions keymap.Map, handlers map[string]Handler, opts ScopeOptions) (string, error) {
	if e.closed {
		return "", ErrClosed
	}
	id, err := e.registry.Add(id, actions, handlers, opts)
	if err != nil {
		return "", err
	}
	e.logger.Debug("scope active", "scope", id, "actions", len(actions), "handlers", len(handlers))
	return id, nil
}

// NotifyScopeUpdated replaces the actions and handlers of an active scope.
func (e *Engine) NotifyScopeUpdated(id string, actions keymap.Map, handlers map[string]Handler, opts ScopeOptions) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.registry.Update(id, actions, handlers, opts); err != nil {
		return err
	}
	e.logger.Debug("scope updated", "scope", id, "actions", len(actions), "handlers", len(handlers))
	return nil
}

// NotifyScopeInactive deactivates a scope.
func (e *Engine) NotifyScopeInactive(id string) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.registry.Remove(id); err != nil {
		return err
	}
	e.logger.Debug("scope inactive", "scope", id)
	return nil
}

// NotifyKeyTransition records a raw key transition and dispatches every
// logical event it produces, including simulated ones. It reports whether
// any handler ran.
func (e *Engine) NotifyKeyTransition(t key.Transition) bool {
	if e.closed {
		return false
	}
	timer := e.metrics.StartTransitionTimer()
	defer timer.Stop()

	if e.hooks.RunPreTransition(&t) {
		e.metrics.RecordHookConsumption()
		e.logger.Debug("transition consumed by hook", "transition", t.String())
		return false
	}

	t.Key = e.keyName(t)
	fired := e.process(t)
	e.hooks.RunPostTransition(t, fired)
	return fired
}

// ResolveAndDispatch matches t against the current history without
// recording it, running at most the handlers a recorded transition would.
// Hosts that replay or re-evaluate the latest transition use it after
// scopes change.
func (e *Engine) ResolveAndDispatch(t key.Transition) bool {
	if e.closed {
		return false
	}
	t.Key = e.keyName(t)
	return e.dispatch(t, false)
}

// Reset discards the key history. Active scopes are kept.
func (e *Engine) Reset() {
	e.history.Reset()
	clear(e.resolvers)
	e.logger.Debug("history reset")
}

// Close deactivates every scope and releases the engine's state. Further
// notifications are rejected.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.registry.Clear()
	e.history.Reset()
	e.hooks.Clear()
	e.resolvers = nil
	e.logger.Debug("engine closed")
	return nil
}

func (e *Engine) scopesChanged(r *scope.Registry) {
	e.history.SetMaxLength(r.LongestSequence())
}

// keyName resolves the name the engine tracks a transition under.
func (e *Engine) keyName(t key.Transition) string {
	if alias, ok := e.config.CustomKeyAliases[t.Code]; ok && t.Code != 0 {
		return alias
	}
	return key.StandardizeName(t.Key)
}

func (e *Engine) process(t key.Transition) bool {
	if e.config.IgnoreEventsCondition != nil && e.config.IgnoreEventsCondition(t) {
		e.ignore(t)
		return false
	}
	if t.Repeat && e.config.IgnoreRepeatedEventsWhenKeyHeldDown {
		e.metrics.RecordIgnored()
		e.logger.Debug("repeat ignored", "key", t.Key, "event", t.Type.String())
		return false
	}

	e.logger.Debug("key transition", "key", t.Key, "event", t.Type.String(), "modifiers", t.Modifiers.String())
	e.reconcileModifiers(t)

	switch t.Type {
	case key.KeyDown:
		return e.keydown(t)
	case key.KeyPress:
		return e.keypress(t)
	case key.KeyUp:
		return e.keyup(t)
	}
	return false
}

// ignore skips an ignored transition. A keyup still releases the key so the
// combination it belongs to can end.
func (e *Engine) ignore(t key.Transition) {
	e.metrics.RecordIgnored()
	e.logger.Debug("transition ignored", "key", t.Key, "event", t.Type.String(), "target", t.Target)

	if t.Type != key.KeyUp {
		return
	}
	if c := e.history.Current(); c != nil && c.IsKeyIncluded(t.Key) && !c.IsKeyReleased(t.Key) {
		e.history.AddKeyToCurrent(c.NormalizedKeyName(t.Key), key.KeyUp, key.Seen)
	}
}

// reconcileModifiers releases modifiers the history holds as pressed but
// whose flag is missing from t, which happens when the host swallowed their
// keyup.
func (e *Engine) reconcileModifiers(t key.Transition) {
	c := e.history.Current()
	if c == nil {
		return
	}
	own := key.ModifierForKey(t.Key)
	for _, mk := range key.ModifierKeys {
		if t.Modifiers.Has(mk.Mod) || own == mk.Mod {
			continue
		}
		if !c.IsKeyStillPressed(mk.Name) {
			continue
		}
		e.history.AddKeyToCurrent(c.NormalizedKeyName(mk.Name), key.KeyUp, key.Simulated)
		e.metrics.RecordReconciledModifier()
		e.logger.Debug("modifier released", "key", mk.Name, "reason", "flag missing")
	}
}

func (e *Engine) keydown(t key.Transition) bool {
	name := t.Key
	c := e.history.Current()
	switch {
	case t.Repeat && c != nil && c.IsKeyIncluded(name):
		// Auto-repeat restarts the key's record so it can match again.
		c.AddKey(c.NormalizedKeyName(name), key.KeyDown, key.Seen)
	case e.history.AllKeysAreReleased():
		e.history.StartNew(name, key.Seen)
	case c.IsKeyReleased(name):
		// Pressed again while other keys are held: a new combination of the
		// held keys plus this one.
		e.history.StartNew(name, key.Seen)
	default:
		e.history.AddKeyToCurrent(name, key.KeyDown, key.Seen)
	}

	fired := e.dispatch(t, false)

	if e.config.SimulateMissingKeypressEvents && e.keypressMissing(name) {
		e.history.AddKeyToCurrent(name, key.KeyPress, key.Simulated)
		e.metrics.RecordSimulated()
		e.logger.Debug("keypress simulated", "key", name)

		sim := t
		sim.Type = key.KeyPress
		if e.dispatch(sim, true) {
			fired = true
		}
	}
	return fired
}

// keypressMissing reports whether the host will not deliver a keypress for
// name. Keys pressed while Meta is held never get one.
func (e *Engine) keypressMissing(name string) bool {
	if !key.HasNativeKeypress(name) {
		return true
	}
	c := e.history.Current()
	return key.ModifierForKey(name) != key.ModMeta && c != nil && c.IsKeyStillPressed(key.Meta)
}

func (e *Engine) keypress(t key.Transition) bool {
	name := t.Key
	c := e.history.Current()
	if c != nil && c.IsKeypressSimulated(name) {
		e.logger.Debug("native keypress skipped", "key", name, "reason", "already simulated")
		return false
	}

	if c == nil || (c.HasEnded() && !c.IsKeyIncluded(name)) {
		e.history.StartNew(name, key.Seen)
	}
	e.history.AddKeyToCurrent(name, key.KeyPress, key.Seen)
	return e.dispatch(t, false)
}

func (e *Engine) keyup(t key.Transition) bool {
	name := t.Key
	c := e.history.Current()
	if c == nil || !c.IsKeyIncluded(name) {
		e.logger.Debug("keyup skipped", "key", name, "reason", "not pressed")
		return false
	}

	e.history.AddKeyToCurrent(c.NormalizedKeyName(name), key.KeyUp, key.Seen)
	fired := e.dispatch(t, false)

	if key.ModifierForKey(name) == key.ModMeta && e.config.Platform == PlatformMac {
		if e.releaseHiddenKeyups(t) {
			fired = true
		}
	}
	return fired
}

// releaseHiddenKeyups simulates the keyups the platform swallowed while Meta
// was held.
func (e *Engine) releaseHiddenKeyups(meta key.Transition) bool {
	c := e.history.Current()
	if c == nil {
		return false
	}

	fired := false
	for _, name := range slices.Sorted(maps.Keys(c.KeysStillPressed())) {
		if !key.KeyupHiddenByMeta(name) {
			continue
		}
		e.history.AddKeyToCurrent(name, key.KeyUp, key.Simulated)
		e.metrics.RecordSimulated()
		e.logger.Debug("keyup simulated", "key", name, "reason", "hidden by meta")

		sim := meta
		sim.Key = name
		sim.Code = 0
		sim.Type = key.KeyUp
		sim.Repeat = false
		if e.dispatch(sim, true) {
			fired = true
		}
	}
	return fired
}

// dispatch runs the handlers matched by t, walking scopes outward from its
// origin. At most one handler runs per scope.
func (e *Engine) dispatch(t key.Transition, simulated bool) bool {
	if e.registry.Len() == 0 || e.history.Current() == nil {
		return false
	}

	res := e.resolver(e.origin(t))
	fired := false
	for pos := 0; pos < res.Len(); pos++ {
		m, ok := res.Find(pos, e.history, t.Key, t.Type)
		if !ok {
			continue
		}

		ev := &Event{
			Action:     m.Binding.Action,
			Scope:      m.Scope.ID(),
			Binding:    m.Binding,
			Key:        t.Key,
			Transition: t,
			Simulated:  simulated,
		}
		if e.hooks.RunPreAction(ev) {
			e.metrics.RecordHookConsumption()
			e.logger.Debug("match consumed by hook", "action", ev.Action, "scope", ev.Scope)
			return true
		}

		e.logger.Debug("action matched",
			"action", ev.Action,
			"scope", ev.Scope,
			"sequence", m.Binding.Sequence,
			"event", t.Type.String(),
			"simulated", simulated,
		)
		timer := e.metrics.StartHandlerTimer()
		m.Handler(ev)
		timer.StopHandler()
		fired = true

		if e.config.StopEventPropagationAfterHandling || ev.PropagationStopped() {
			break
		}
	}
	return fired
}

func (e *Engine) origin(t key.Transition) int {
	if t.Origin == "" {
		return 0
	}
	pos, ok := e.registry.Position(t.Origin)
	if !ok {
		e.logger.Warn("unknown origin scope", "scope", t.Origin)
		return 0
	}
	return pos
}

// resolver returns the resolver for an origin position, rebuilding the cache
// when the registry has changed.
func (e *Engine) resolver(origin int) *resolver.Resolver {
	if v := e.registry.Version(); v != e.resolverVersion || e.resolvers == nil {
		e.resolvers = make(map[int]*resolver.Resolver)
		e.resolverVersion = v
	}
	if r, ok := e.resolvers[origin]; ok {
		return r
	}

	actions := e.registry.ActionSet()
	r := resolver.New(e.registry.Snapshot(origin), resolver.Config{
		AllowCombinationSubmatches: e.config.AllowCombinationSubmatches,
		EnableHardSequences:        e.config.EnableHardSequences,
		DefaultEvent:               e.config.DefaultKeyEvent,
		CustomNames:                e.registry.CustomNames(),
		HasAction:                  func(name string) bool { return actions[name] },
	})
	e.resolvers[origin] = r
	return r
}
