package input

import (
	"cmp"
	"maps"
	"slices"

	"github.com/dshills/keyscope/internal/input/key"
)

// SequenceDescription is one key sequence of an action.
type SequenceDescription struct {
	Sequence string        `json:"sequence"`
	Event    key.EventType `json:"event"`
	Scope    string        `json:"scope"`
}

// ActionDescription describes an action across every active scope.
type ActionDescription struct {
	Action      string                `json:"action"`
	Name        string                `json:"name,omitempty"`
	Group       string                `json:"group,omitempty"`
	Description string                `json:"description,omitempty"`
	Sequences   []SequenceDescription `json:"sequences"`

	// Handled reports whether any active scope has a handler for the action.
	Handled bool `json:"handled"`
}

// ApplicationActionMap returns every declared action with its key sequences,
// innermost scope first. A sequence declared by several scopes is listed once.
func (e *Engine) ApplicationActionMap() map[string][]string {
	out := make(map[string][]string)
	for i := 0; i < e.registry.Len(); i++ {
		table := e.registry.At(i).Table()
		for _, name := range table.Actions() {
			seqs := out[name]
			for _, b := range table.Bindings(name) {
				if !slices.Contains(seqs, b.Sequence) {
					seqs = append(seqs, b.Sequence)
				}
			}
			out[name] = seqs
		}
	}
	return out
}

// ApplicationKeyMap returns a description of every declared action, sorted
// by action name. Display metadata comes from the innermost scope that sets
// it.
func (e *Engine) ApplicationKeyMap() []ActionDescription {
	byName := make(map[string]*ActionDescription)
	for i := 0; i < e.registry.Len(); i++ {
		s := e.registry.At(i)
		table := s.Table()
		for _, name := range table.Actions() {
			d, ok := byName[name]
			if !ok {
				d = &ActionDescription{Action: name}
				byName[name] = d
			}
			if meta, ok := table.Action(name); ok {
				d.Name = cmp.Or(d.Name, meta.Name)
				d.Group = cmp.Or(d.Group, meta.Group)
				d.Description = cmp.Or(d.Description, meta.Description)
			}
			for _, b := range table.Bindings(name) {
				seen := slices.ContainsFunc(d.Sequences, func(sd SequenceDescription) bool {
					return sd.Sequence == b.Sequence && sd.Event == b.EventType
				})
				if !seen {
					d.Sequences = append(d.Sequences, SequenceDescription{
						Sequence: b.Sequence,
						Event:    b.EventType,
						Scope:    s.ID(),
					})
				}
			}
		}
	}

	for i := 0; i < e.registry.Len(); i++ {
		s := e.registry.At(i)
		for _, name := range s.HandlerNames() {
			if d, ok := byName[name]; ok {
				d.Handled = true
			}
		}
	}

	out := make([]ActionDescription, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		out = append(out, *byName[name])
	}
	return out
}
