package key

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Parse errors
var (
	ErrEmptySequence  = errors.New("empty key sequence")
	ErrInvalidKeyName = errors.New("invalid key name")
)

// ParseOptions controls how ParseSequence interprets a key expression.
type ParseOptions struct {
	// EventType is recorded on the parsed combination.
	EventType EventType

	// EnsureValidKeys rejects names that are not recognised keys.
	EnsureValidKeys bool

	// CustomNames are additional key names treated as valid, typically the
	// targets of custom key code aliases.
	CustomNames map[string]bool
}

// SequenceInfo describes the combinations leading up to the final one.
type SequenceInfo struct {
	// Prefix is the canonical IDs of every combination but the last,
	// joined by a single space. Empty for single-combination sequences.
	Prefix string

	// Size is the number of combinations in the sequence.
	Size int
}

// CombinationInfo describes the final combination of a sequence.
type CombinationInfo struct {
	// ID is the canonical combination ID: key names sorted and joined by "+".
	ID string

	// Keys are the standardized key names, sorted.
	Keys []string

	// Size is the number of keys.
	Size int

	// EventType is the transition the combination is bound to.
	EventType EventType
}

// Parsed is the result of parsing a key expression.
type Parsed struct {
	Sequence    SequenceInfo
	Combination CombinationInfo

	// Keys holds the sorted key names of every combination in order.
	Keys [][]string
}

// String returns the canonical key expression for p. Space and plus keys are
// written "space" and "plus" so the result parses back to p.
func (p Parsed) String() string {
	combos := make([]string, len(p.Keys))
	for i, keys := range p.Keys {
		names := make([]string, len(keys))
		for j, k := range keys {
			names[j] = formatName(k)
		}
		combos[i] = strings.Join(names, "+")
	}
	return strings.Join(combos, " ")
}

func formatName(name string) string {
	switch name {
	case Space:
		return "space"
	case Plus:
		return "plus"
	}
	return name
}

// ParseSequence parses a key expression such as "g g" or "control+shift+p".
//
// Combinations are separated by whitespace and keys within a combination by
// "+". Key names are standardized, so "ctrl+s" and "Control+s" parse to the
// same combination. With EnsureValidKeys set, an unrecognised name returns an
// error wrapping ErrInvalidKeyName.
func ParseSequence(s string, opts ParseOptions) (Parsed, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Parsed{}, ErrEmptySequence
	}

	ids := make([]string, 0, len(fields))
	all := make([][]string, 0, len(fields))
	for _, field := range fields {
		keys, err := parseCombination(field, opts)
		if err != nil {
			return Parsed{}, err
		}
		ids = append(ids, strings.Join(keys, "+"))
		all = append(all, keys)
	}
	last := all[len(all)-1]

	return Parsed{
		Sequence: SequenceInfo{
			Prefix: strings.Join(ids[:len(ids)-1], " "),
			Size:   len(ids),
		},
		Combination: CombinationInfo{
			ID:        ids[len(ids)-1],
			Keys:      last,
			Size:      len(last),
			EventType: opts.EventType,
		},
		Keys: all,
	}, nil
}

// MustParseSequence parses a key expression and panics on error.
// Use only for static initialization or tests.
func MustParseSequence(s string, opts ParseOptions) Parsed {
	p, err := ParseSequence(s, opts)
	if err != nil {
		panic(err)
	}
	return p
}

// IsValidSequence reports whether every key in s is recognised.
func IsValidSequence(s string, custom map[string]bool) bool {
	_, err := ParseSequence(s, ParseOptions{EnsureValidKeys: true, CustomNames: custom})
	return err == nil
}

// NormalizeSequence returns the canonical form of a key expression.
func NormalizeSequence(s string) (string, error) {
	p, err := ParseSequence(s, ParseOptions{})
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// CombinationID joins key names into a canonical combination ID.
// The names are sorted in place.
func CombinationID(keys []string) string {
	slices.Sort(keys)
	return strings.Join(keys, "+")
}

// parseCombination splits one combination into sorted, de-duplicated,
// standardized key names.
func parseCombination(s string, opts ParseOptions) ([]string, error) {
	var keys []string
	for _, raw := range splitKeys(s) {
		name := StandardizeName(raw)
		if opts.EnsureValidKeys && !IsValid(name, opts.CustomNames) {
			return nil, fmt.Errorf("%w: %q in %q", ErrInvalidKeyName, raw, s)
		}
		if !slices.Contains(keys, name) {
			keys = append(keys, name)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySequence, s)
	}
	slices.Sort(keys)
	return keys, nil
}

// splitKeys splits a combination on "+". A "+" where a key name is expected
// (at the start, or straight after a separator) is a literal plus key, and
// the "+" that follows it is its separator.
func splitKeys(s string) []string {
	var (
		keys      []string
		cur       strings.Builder
		expectKey = true
		afterPlus = false
	)
	for _, r := range s {
		if r == '+' {
			switch {
			case afterPlus:
				afterPlus = false
				expectKey = true
			case expectKey && cur.Len() == 0:
				keys = append(keys, "+")
				afterPlus = true
				expectKey = false
			default:
				keys = append(keys, cur.String())
				cur.Reset()
				expectKey = true
			}
			continue
		}
		cur.WriteRune(r)
		expectKey = false
		afterPlus = false
	}
	if cur.Len() > 0 {
		keys = append(keys, cur.String())
	}
	return keys
}
