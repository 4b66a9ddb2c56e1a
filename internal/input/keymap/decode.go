package keymap

import (
	"fmt"
)

// Decode converts a loosely typed key map, as produced by decoding TOML,
// YAML or JSON into map[string]any, into a Map.
//
// Accepted forms per action:
//
//	SAVE = "control+s"
//	MOVE = ["up", "k"]
//	DELETE = { sequence = "d d", action = "keyup" }
//	HELP = { sequences = ["?", { sequence = "f1", action = "keydown" }], name = "Help" }
func Decode(raw map[string]any) (Map, error) {
	m := make(Map, len(raw))
	for name, v := range raw {
		a, err := decodeAction(v)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", name, err)
		}
		m[name] = a
	}
	return m, nil
}

func decodeAction(v any) (Action, error) {
	switch v := v.(type) {
	case string:
		return Keys(v), nil
	case []string:
		return Keys(v...), nil
	case []any:
		seqs, err := decodeSequences(v)
		if err != nil {
			return Action{}, err
		}
		return Action{Sequences: seqs}, nil
	case map[string]any:
		if _, ok := v["sequences"]; ok {
			return decodeActionTable(v)
		}
		seq, err := decodeSequence(v)
		if err != nil {
			return Action{}, err
		}
		return Action{Sequences: []Sequence{seq}}, nil
	default:
		return Action{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidForm, v)
	}
}

func decodeActionTable(v map[string]any) (Action, error) {
	var a Action
	switch seqs := v["sequences"].(type) {
	case string:
		a.Sequences = []Sequence{{Sequence: seqs}}
	case []string:
		a = Keys(seqs...)
	case []any:
		parsed, err := decodeSequences(seqs)
		if err != nil {
			return Action{}, err
		}
		a.Sequences = parsed
	default:
		return Action{}, fmt.Errorf("%w: sequences must be a list, got %T", ErrInvalidForm, seqs)
	}

	var err error
	if a.Name, err = optionalString(v, "name"); err != nil {
		return Action{}, err
	}
	if a.Group, err = optionalString(v, "group"); err != nil {
		return Action{}, err
	}
	if a.Description, err = optionalString(v, "description"); err != nil {
		return Action{}, err
	}
	return a, nil
}

func decodeSequences(items []any) ([]Sequence, error) {
	seqs := make([]Sequence, 0, len(items))
	for i, item := range items {
		switch item := item.(type) {
		case string:
			seqs = append(seqs, Sequence{Sequence: item})
		case map[string]any:
			seq, err := decodeSequence(item)
			if err != nil {
				return nil, fmt.Errorf("sequence %d: %w", i, err)
			}
			seqs = append(seqs, seq)
		default:
			return nil, fmt.Errorf("%w: sequence %d has type %T", ErrInvalidForm, i, item)
		}
	}
	return seqs, nil
}

func decodeSequence(v map[string]any) (Sequence, error) {
	seq, ok := v["sequence"].(string)
	if !ok {
		return Sequence{}, fmt.Errorf("%w: missing sequence", ErrInvalidForm)
	}
	event, err := optionalString(v, "action")
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{Sequence: seq, Event: event}, nil
}

func optionalString(v map[string]any, field string) (string, error) {
	raw, ok := v[field]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidForm, field, raw)
	}
	return s, nil
}
