package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyscope/internal/input"
)

// DefaultTimeout bounds a single handler call.
const DefaultTimeout = time.Second

// ErrRuntimeClosed is returned when compiling on a closed runtime.
var ErrRuntimeClosed = errors.New("script runtime closed")

// Notification is a message a handler reported with notify.
type Notification struct {
	Scope   string
	Action  string
	Message string
}

// Runtime owns one Lua state shared by every handler compiled on it.
//
// gopher-lua states are not goroutine-safe; calls are serialized on the
// runtime's mutex.
type Runtime struct {
	mu sync.Mutex

	L       *lua.LState
	timeout time.Duration
	notify  func(Notification)
	logger  *slog.Logger

	// current is the event of the running handler, nil between calls.
	current *input.Event
	closed  bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the limit for a single handler call.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithNotify sets the function receiving notify messages.
func WithNotify(fn func(Notification)) Option {
	return func(r *Runtime) {
		r.notify = fn
	}
}

// WithLogger sets the logger for handler errors and log calls.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRuntime creates a runtime with a fresh Lua state.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.installAPI()
	return r
}

// openSafeLibraries opens the libraries without file, process or module
// access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (r *Runtime) installAPI() {
	r.L.SetGlobal("notify", r.L.NewFunction(r.luaNotify))
	r.L.SetGlobal("stop", r.L.NewFunction(r.luaStop))
	r.L.SetGlobal("log", r.L.NewFunction(r.luaLog))
}

// Compile compiles the Lua source of the handler for action in scope.
// Syntax errors are returned here; runtime errors are logged when the
// handler runs.
func (r *Runtime) Compile(scopeID, action, source string) (input.Handler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRuntimeClosed
	}
	fn, err := r.L.LoadString(source)
	if err != nil {
		return nil, fmt.Errorf("compiling handler for %s: %w", action, err)
	}

	return func(ev *input.Event) {
		if err := r.call(fn, ev); err != nil && !errors.Is(err, ErrRuntimeClosed) {
			r.logger.Error("handler failed",
				"scope", ev.Scope,
				"action", ev.Action,
				"error", err,
			)
		}
	}, nil
}

// call runs fn with ev as its argument.
func (r *Runtime) call(fn *lua.LFunction, ev *input.Event) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.current = ev
	r.L.SetContext(ctx)
	defer func() {
		r.L.RemoveContext()
		r.current = nil
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()

	tbl := r.eventTable(ev)
	r.L.SetGlobal("event", tbl)
	r.L.Push(fn)
	r.L.Push(tbl)
	return r.L.PCall(1, 0, nil)
}

func (r *Runtime) eventTable(ev *input.Event) *lua.LTable {
	t := ev.Transition
	tbl := r.L.NewTable()
	tbl.RawSetString("action", lua.LString(ev.Action))
	tbl.RawSetString("scope", lua.LString(ev.Scope))
	tbl.RawSetString("key", lua.LString(ev.Key))
	tbl.RawSetString("sequence", lua.LString(ev.Binding.Sequence))
	tbl.RawSetString("type", lua.LString(t.Type.String()))
	tbl.RawSetString("simulated", lua.LBool(ev.Simulated))
	tbl.RawSetString("target", lua.LString(t.Target))
	tbl.RawSetString("shift", lua.LBool(t.Modifiers.HasShift()))
	tbl.RawSetString("control", lua.LBool(t.Modifiers.HasCtrl()))
	tbl.RawSetString("alt", lua.LBool(t.Modifiers.HasAlt()))
	tbl.RawSetString("meta", lua.LBool(t.Modifiers.HasMeta()))
	return tbl
}

func (r *Runtime) luaNotify(L *lua.LState) int {
	msg := L.CheckString(1)
	if r.notify != nil && r.current != nil {
		r.notify(Notification{Scope: r.current.Scope, Action: r.current.Action, Message: msg})
	}
	return 0
}

func (r *Runtime) luaStop(L *lua.LState) int {
	if r.current != nil {
		r.current.StopPropagation()
	}
	return 0
}

func (r *Runtime) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	attrs := []any{"message", msg}
	if r.current != nil {
		attrs = append(attrs, "scope", r.current.Scope, "action", r.current.Action)
	}
	r.logger.Info("handler log", attrs...)
	return 0
}

// Close releases the Lua state. Handlers compiled on the runtime do nothing
// afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.L.Close()
	return nil
}
