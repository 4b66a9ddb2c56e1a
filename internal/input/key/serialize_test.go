package key

import (
	"slices"
	"testing"
)

func TestSerializeCombinationCanonicalFirst(t *testing.T) {
	tests := []struct {
		keys []string
		want string
	}{
		{[]string{"a"}, "a"},
		{[]string{"s", Control}, "Control+s"},
		{[]string{"!", Shift}, "!+Shift"},
		{[]string{"p", Shift, Meta}, "Meta+Shift+p"},
	}

	for _, tt := range tests {
		ids := SerializeCombination(tt.keys)
		if len(ids) == 0 || ids[0] != tt.want {
			t.Errorf("SerializeCombination(%q)[0] = %q, want %q", tt.keys, ids, tt.want)
		}
	}
}

func TestSerializeCombinationAliases(t *testing.T) {
	tests := []struct {
		keys    []string
		contain string
	}{
		{[]string{"!", Shift}, "1+Shift"},
		{[]string{"A", Shift}, "Shift+a"},
		{[]string{"å", Alt}, "Alt+a"},
		{[]string{"Å", Alt, Shift}, "Alt+Shift+a"},
		{[]string{"OS", "k"}, "Meta+k"},
	}

	for _, tt := range tests {
		ids := SerializeCombination(tt.keys)
		if !slices.Contains(ids, tt.contain) {
			t.Errorf("SerializeCombination(%q) = %q, want it to contain %q", tt.keys, ids, tt.contain)
		}
	}
}

func TestSerializeCombinationNoDuplicates(t *testing.T) {
	ids := SerializeCombination([]string{"1", "!", Shift})
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %q in %q", id, ids)
		}
		seen[id] = true
	}
}

func TestSerializeCombinationEmpty(t *testing.T) {
	if ids := SerializeCombination(nil); ids != nil {
		t.Errorf("SerializeCombination(nil) = %q, want nil", ids)
	}
}

func TestSerializeMatchesParsedID(t *testing.T) {
	for _, seq := range []string{"shift+1", "cmd+k", "alt+a", "control+shift+z"} {
		p := MustParseSequence(seq, ParseOptions{})
		live := slices.Clone(p.Combination.Keys)
		if ids := SerializeCombination(live); ids[0] != p.Combination.ID {
			t.Errorf("SerializeCombination(%q)[0] = %q, want %q", live, ids[0], p.Combination.ID)
		}
	}
}

func TestAliasIndex(t *testing.T) {
	index := AliasIndex([]string{"!", Shift})
	if index["1"] != "!" {
		t.Errorf("AliasIndex[1] = %q, want !", index["1"])
	}
	if index["!"] != "!" {
		t.Errorf("AliasIndex[!] = %q, want !", index["!"])
	}
	if index[Shift] != Shift {
		t.Errorf("AliasIndex[Shift] = %q, want Shift", index[Shift])
	}
}
