// Package config loads keyscope documents.
//
// A document holds engine options and the scopes to activate, each with a
// key map and the sources of its handlers. Documents are written in TOML or
// YAML and chosen by file extension. Options may be overridden with
// KEYSCOPE_ environment variables, and a Watcher reports when a document
// changes on disk so hosts can reload it.
//
//	[options]
//	default_key_event = "keypress"
//	ignore_events_condition = 'Target in ["input", "textarea"]'
//
//	[[scopes]]
//	id = "editor"
//	[scopes.keymap]
//	SAVE = "control+s"
//	[scopes.handlers]
//	SAVE = 'notify("saved")'
package config
