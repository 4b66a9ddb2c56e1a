package key

import (
	"errors"
	"slices"
	"testing"
)

func TestParseSequenceSingleCombination(t *testing.T) {
	tests := []struct {
		seq      string
		wantID   string
		wantKeys []string
	}{
		{"a", "a", []string{"a"}},
		{"A", "A", []string{"A"}},
		{"enter", "Enter", []string{"Enter"}},
		{"ESC", "Escape", []string{"Escape"}},
		{"ctrl+s", "Control+s", []string{"Control", "s"}},
		{"s+ctrl", "Control+s", []string{"Control", "s"}},
		{"cmd+shift+p", "Meta+Shift+p", []string{"Meta", "Shift", "p"}},
		{"option+a", "Alt+a", []string{"Alt", "a"}},
		{"space", " ", []string{" "}},
		{"up", "ArrowUp", []string{"ArrowUp"}},
		{"shift+plus", "++Shift", []string{"+", "Shift"}},
		{"shift++", "++Shift", []string{"+", "Shift"}},
		{"+", "+", []string{"+"}},
		{"a++b", "++a+b", []string{"+", "a", "b"}},
		{"ctrl+++s", "++Control+s", []string{"+", "Control", "s"}},
		{"a+a", "a", []string{"a"}},
	}

	for _, tt := range tests {
		p, err := ParseSequence(tt.seq, ParseOptions{EnsureValidKeys: true})
		if err != nil {
			t.Errorf("ParseSequence(%q) error = %v", tt.seq, err)
			continue
		}
		if p.Combination.ID != tt.wantID {
			t.Errorf("ParseSequence(%q) id = %q, want %q", tt.seq, p.Combination.ID, tt.wantID)
		}
		if !slices.Equal(p.Combination.Keys, tt.wantKeys) {
			t.Errorf("ParseSequence(%q) keys = %q, want %q", tt.seq, p.Combination.Keys, tt.wantKeys)
		}
		if p.Combination.Size != len(tt.wantKeys) {
			t.Errorf("ParseSequence(%q) size = %d, want %d", tt.seq, p.Combination.Size, len(tt.wantKeys))
		}
		if p.Sequence.Size != 1 || p.Sequence.Prefix != "" {
			t.Errorf("ParseSequence(%q) sequence = %+v, want single combination", tt.seq, p.Sequence)
		}
	}
}

func TestParseSequenceMultipleCombinations(t *testing.T) {
	tests := []struct {
		seq        string
		wantPrefix string
		wantID     string
		wantSize   int
	}{
		{"g g", "g", "g", 2},
		{"ctrl+x ctrl+s", "Control+x", "Control+s", 2},
		{"  a   b  c ", "a b", "c", 3},
		{"enter tab", "Enter", "Tab", 2},
	}

	for _, tt := range tests {
		p, err := ParseSequence(tt.seq, ParseOptions{})
		if err != nil {
			t.Errorf("ParseSequence(%q) error = %v", tt.seq, err)
			continue
		}
		if p.Sequence.Prefix != tt.wantPrefix {
			t.Errorf("ParseSequence(%q) prefix = %q, want %q", tt.seq, p.Sequence.Prefix, tt.wantPrefix)
		}
		if p.Combination.ID != tt.wantID {
			t.Errorf("ParseSequence(%q) id = %q, want %q", tt.seq, p.Combination.ID, tt.wantID)
		}
		if p.Sequence.Size != tt.wantSize {
			t.Errorf("ParseSequence(%q) size = %d, want %d", tt.seq, p.Sequence.Size, tt.wantSize)
		}
	}
}

func TestParseSequenceEventType(t *testing.T) {
	p, err := ParseSequence("a", ParseOptions{EventType: KeyUp})
	if err != nil {
		t.Fatalf("ParseSequence error = %v", err)
	}
	if p.Combination.EventType != KeyUp {
		t.Errorf("event type = %v, want keyup", p.Combination.EventType)
	}
}

func TestParseSequenceErrors(t *testing.T) {
	tests := []struct {
		seq     string
		wantErr error
	}{
		{"", ErrEmptySequence},
		{"   ", ErrEmptySequence},
		{"foo", ErrInvalidKeyName},
		{"ctrl+foo", ErrInvalidKeyName},
		{"a bogus", ErrInvalidKeyName},
	}

	for _, tt := range tests {
		_, err := ParseSequence(tt.seq, ParseOptions{EnsureValidKeys: true})
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseSequence(%q) error = %v, want %v", tt.seq, err, tt.wantErr)
		}
	}
}

func TestParseSequenceWithoutValidation(t *testing.T) {
	p, err := ParseSequence("foo", ParseOptions{})
	if err != nil {
		t.Fatalf("ParseSequence error = %v", err)
	}
	if p.Combination.ID != "foo" {
		t.Errorf("id = %q, want foo", p.Combination.ID)
	}
}

func TestParseSequenceCustomNames(t *testing.T) {
	custom := map[string]bool{"BrowserBack2": true}
	if _, err := ParseSequence("BrowserBack2", ParseOptions{EnsureValidKeys: true}); !errors.Is(err, ErrInvalidKeyName) {
		t.Errorf("expected ErrInvalidKeyName without custom names, got %v", err)
	}
	if _, err := ParseSequence("BrowserBack2", ParseOptions{EnsureValidKeys: true, CustomNames: custom}); err != nil {
		t.Errorf("unexpected error with custom names: %v", err)
	}
}

func TestParseSequenceIdempotent(t *testing.T) {
	inputs := []string{
		"a", "ctrl+s", "cmd+shift+p", "g g", "ctrl+x ctrl+s", "shift+plus",
		"esc", "alt+enter tab", "space", "+", "f12", "A B C",
	}

	for _, seq := range inputs {
		first, err := ParseSequence(seq, ParseOptions{EnsureValidKeys: true})
		if err != nil {
			t.Errorf("ParseSequence(%q) error = %v", seq, err)
			continue
		}
		second, err := ParseSequence(first.String(), ParseOptions{EnsureValidKeys: true})
		if err != nil {
			t.Errorf("ParseSequence(%q) reparse error = %v", first.String(), err)
			continue
		}
		if first.Combination.ID != second.Combination.ID || first.Sequence != second.Sequence {
			t.Errorf("ParseSequence not idempotent for %q: %+v then %+v", seq, first, second)
		}
	}
}

func TestParsedString(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{"ctrl+s", "Control+s"},
		{"space", "space"},
		{"shift++", "plus+Shift"},
		{"g  g", "g g"},
	}

	for _, tt := range tests {
		p := MustParseSequence(tt.seq, ParseOptions{})
		if got := p.String(); got != tt.want {
			t.Errorf("ParseSequence(%q).String() = %q, want %q", tt.seq, got, tt.want)
		}
	}
}

func TestIsValidSequence(t *testing.T) {
	tests := []struct {
		seq  string
		want bool
	}{
		{"a", true},
		{"ctrl+a", true},
		{"g g", true},
		{"é", true},
		{"MOVE_UP", false},
		{"save", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidSequence(tt.seq, nil); got != tt.want {
			t.Errorf("IsValidSequence(%q) = %v, want %v", tt.seq, got, tt.want)
		}
	}
}

func TestNormalizeSequence(t *testing.T) {
	got, err := NormalizeSequence("s+CTRL  x")
	if err != nil {
		t.Fatalf("NormalizeSequence error = %v", err)
	}
	if want := "Control+s x"; got != want {
		t.Errorf("NormalizeSequence = %q, want %q", got, want)
	}
}

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a+b", []string{"a", "b"}},
		{"a++", []string{"a", "+"}},
		{"++a", []string{"+", "a"}},
		{"+", []string{"+"}},
		{"a++b", []string{"a", "+", "b"}},
		{"a+++b", []string{"a", "+", "b"}},
	}

	for _, tt := range tests {
		if got := splitKeys(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("splitKeys(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMustParseSequencePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseSequence should panic on invalid input")
		}
	}()
	MustParseSequence("", ParseOptions{})
}
