// Package key provides key names, transition records and sequence parsing
// for the input system.
//
// This package defines the fundamental vocabulary of the matching engine:
//
//   - Key names: canonical names for non-printable keys ("Enter", "ArrowUp",
//     "Shift") and single printable characters ("a", "!", " ").
//   - Modifier: flags describing which modifier keys a raw event reports.
//   - EventType / State / Record: the keydown, keypress and keyup slots of a
//     key and whether each was seen, simulated or not seen at all.
//   - Transition: a single raw key transition delivered by the host.
//
// # Key Expressions
//
// Key expressions are written as combinations separated by whitespace:
//
//   - Single keys: "a", "A", "1", "enter", "esc"
//   - Combinations: "control+s", "cmd+shift+p", "shift+plus"
//   - Sequences: "g g", "control+x control+s"
//
// A literal plus sign is written "plus"; a leading or doubled "+" is also
// read as a literal.
//
// # Aliases
//
// A key can be reported under several names depending on the modifiers held
// and the platform: shift+1 arrives as "!", option+a on macOS arrives as "å",
// and some platforms report Meta as "OS". SerializeCombination expands a live
// set of keys into every equivalent combination ID so a binding written in
// any of these spellings matches.
package key
