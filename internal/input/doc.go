// Package input matches keyboard transitions against scoped key maps.
//
// A host activates scopes as regions of its interface gain focus, each with
// a key map of named actions and a set of handlers, and feeds every raw key
// transition to an Engine. The engine records transitions in a bounded
// history of key combinations, compensates for events the input layer fails
// to deliver, and runs the handler of the nearest scope whose binding the
// transition completes.
//
// # Architecture
//
//   - key: key names, aliases, modifier flags and the sequence parser
//   - history: key combinations and the bounded history of them
//   - keymap: action declarations compiled into bindings
//   - scope: the priority list of active scopes
//   - resolver: lazy wiring of bindings to handlers and matching
//
// # Simulated events
//
// Some keys never produce a keypress, and keys pressed while Meta is held
// lose theirs on most platforms. With SimulateMissingKeypressEvents the
// engine synthesizes those keypresses. On macOS the keyup of a key released
// while Meta is held is never delivered; the engine releases such keys when
// Meta goes up. Modifiers whose flag disappears from a transition are
// released as if their keyup had arrived.
//
// # Usage
//
//	engine := input.New(input.DefaultConfig())
//	defer engine.Close()
//
//	_, err := engine.NotifyScopeActive("editor", keymap.Map{
//	    "SAVE": keymap.Keys("ctrl+s"),
//	}, map[string]input.Handler{
//	    "SAVE": func(ev *input.Event) { save() },
//	}, input.ScopeOptions{})
//
//	for t := range transitions {
//	    engine.NotifyKeyTransition(t)
//	}
package input
