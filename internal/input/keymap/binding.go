package keymap

import (
	"github.com/dshills/keyscope/internal/input/key"
)

// Binding is a single parsed key sequence bound to an action.
type Binding struct {
	// Action is the name of the action this sequence triggers.
	Action string

	// Sequence is the canonical key expression, e.g. "Control+x Control+s".
	Sequence string

	// Prefix is the canonical IDs of every combination but the last,
	// separated by spaces. Empty for single-combination sequences.
	Prefix string

	// ID is the canonical ID of the final combination.
	ID string

	// Keys are the key names of the final combination, sorted.
	Keys []string

	// Size is the number of keys in the final combination.
	Size int

	// SequenceLength is the number of combinations in the sequence.
	SequenceLength int

	// EventType is the transition the binding fires on.
	EventType key.EventType
}

// NewBinding parses seq into a binding for action.
func NewBinding(action, seq string, opts key.ParseOptions) (Binding, error) {
	p, err := key.ParseSequence(seq, opts)
	if err != nil {
		return Binding{}, err
	}
	return Binding{
		Action:         action,
		Sequence:       p.String(),
		Prefix:         p.Sequence.Prefix,
		ID:             p.Combination.ID,
		Keys:           p.Combination.Keys,
		Size:           p.Combination.Size,
		SequenceLength: p.Sequence.Size,
		EventType:      p.Combination.EventType,
	}, nil
}

// FullID returns the prefix and final combination ID as one string.
func (b Binding) FullID() string {
	if b.Prefix == "" {
		return b.ID
	}
	return b.Prefix + " " + b.ID
}

// String returns a representation like "SAVE: Control+s (keydown)".
func (b Binding) String() string {
	return b.Action + ": " + b.Sequence + " (" + b.EventType.String() + ")"
}
