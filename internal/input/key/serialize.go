package key

import (
	"slices"
	"strings"
)

// SerializeCombination returns every combination ID the given set of live
// keys can be matched by. Each key is expanded to its aliases (depending on
// whether Shift and Alt are part of the set) and the Cartesian product of
// those alias lists is serialized. The canonical ID, built from the keys
// themselves, is always first.
func SerializeCombination(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}

	names := slices.Clone(keys)
	slices.Sort(names)
	shift := slices.Contains(names, Shift)
	alt := slices.Contains(names, Alt)

	perms := [][]string{{}}
	for _, name := range names {
		aliases := Aliases(name, shift, alt)
		next := make([][]string, 0, len(perms)*len(aliases))
		for _, p := range perms {
			for _, a := range aliases {
				next = append(next, append(slices.Clip(p), a))
			}
		}
		perms = next
	}

	ids := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		id := CombinationID(dedupe(p))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// AliasIndex maps every alias of the given live keys to the key it stands
// for. A live key name always maps to itself.
func AliasIndex(keys []string) map[string]string {
	shift := slices.Contains(keys, Shift)
	alt := slices.Contains(keys, Alt)

	index := make(map[string]string, len(keys)*2)
	for _, name := range keys {
		index[name] = name
	}
	for _, name := range keys {
		for _, a := range Aliases(name, shift, alt) {
			if _, taken := index[a]; !taken {
				index[a] = name
			}
		}
	}
	return index
}

// dedupe removes repeated names produced when two live keys share an alias.
func dedupe(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// SplitSequence splits a sequence string into its combination IDs.
func SplitSequence(s string) []string {
	return strings.Fields(s)
}
