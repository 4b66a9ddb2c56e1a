// Package script runs action handlers written in Lua.
//
// A handler is a Lua chunk compiled once when its scope is activated. It is
// called with an event table as its only argument, also available as the
// global "event":
//
//	event.action     matched action name
//	event.scope      id of the scope whose handler runs
//	event.key        key that completed the match
//	event.sequence   canonical sequence of the binding, e.g. "Control+s"
//	event.type       "keydown", "keypress" or "keyup"
//	event.simulated  true for transitions synthesized by the engine
//	event.target     host tag of the element that received the transition
//	event.shift, event.control, event.alt, event.meta
//
// Handlers may call:
//
//	notify(msg)  report a message to the host
//	stop()       keep farther scopes from handling the transition
//	log(msg)     write msg to the runtime's logger
//
// Only the base, table, string and math libraries are opened. Every call
// runs under a timeout; a handler that errors or times out is logged and
// the transition continues as if the handler had returned.
package script
