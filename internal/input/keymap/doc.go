// Package keymap normalizes action key maps into bindings.
//
// A key map names actions and the key sequences that trigger them. Each
// action can be written in several forms:
//
//	keymap.Map{
//	    "SAVE":        keymap.Keys("control+s"),
//	    "MOVE_UP":     keymap.Keys("up", "k"),
//	    "DELETE_LINE": keymap.Sequences(keymap.On(key.KeyUp, "d d")),
//	    "HELP":        keymap.Keys("?").WithName("Help").WithGroup("General"),
//	}
//
// Configuration files use the looser forms accepted by Decode: a string, a
// list of strings, a {sequence, action} table where action is the event
// type, or a {sequences, name, group, description} table.
//
// # Bindings
//
// Compile parses every sequence into a Binding: the canonical prefix (every
// combination but the last), the canonical ID of the final combination, its
// key names and the event type it fires on. Sequences without an explicit
// event type use the default event type of the registering scope.
//
// # Usage
//
//	table, err := keymap.Compile(m, keymap.Options{DefaultEvent: key.KeyPress})
//	if errors.Is(err, key.ErrInvalidKeyName) {
//	    // report the configuration error
//	}
//	for _, b := range table.Bindings("SAVE") {
//	    fmt.Println(b.Prefix, b.ID, b.EventType)
//	}
package keymap
