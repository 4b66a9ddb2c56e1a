package input

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// ActionMatch is an action found by SearchActions.
type ActionMatch struct {
	ActionDescription

	// Score ranks the match; higher is better.
	Score int

	// Field is the text that matched best: the action, its name, its
	// description or one of its sequences.
	Field string
}

// SearchActions fuzzy-matches query against the application key map and
// returns at most limit matches, best first. Query characters must appear
// in order but not adjacent, so "cs" finds "Control+s". An empty query
// returns every action in key map order. A limit <= 0 means no limit.
func (e *Engine) SearchActions(query string, limit int) []ActionMatch {
	descs := e.ApplicationKeyMap()
	q := []rune(strings.ToLower(strings.TrimSpace(query)))

	var out []ActionMatch
	for _, d := range descs {
		if len(q) == 0 {
			out = append(out, ActionMatch{ActionDescription: d})
			continue
		}

		best, field := 0, ""
		candidates := []string{d.Action, d.Name, d.Description}
		for _, s := range d.Sequences {
			candidates = append(candidates, s.Sequence)
		}
		for _, c := range candidates {
			if score := fuzzyScore(q, c); score > best {
				best, field = score, c
			}
		}
		if best > 0 {
			out = append(out, ActionMatch{ActionDescription: d, Score: best, Field: field})
		}
	}

	slices.SortStableFunc(out, func(a, b ActionMatch) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.Action, b.Action))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// fuzzyScore scores text against a lowercased query. Zero means no match.
func fuzzyScore(query []rune, text string) int {
	if text == "" {
		return 0
	}
	orig := []rune(text)
	folded := []rune(strings.ToLower(text))
	if len(folded) != len(orig) {
		orig = folded
	}

	matches := make([]int, 0, len(query))
	for i := 0; i < len(folded) && len(matches) < len(query); i++ {
		if folded[i] == query[len(matches)] {
			matches = append(matches, i)
		}
	}
	if len(matches) != len(query) {
		return 0
	}

	score := 100
	for i, idx := range matches {
		if i > 0 && idx == matches[i-1]+1 {
			score += 20
		}
		if atWordStart(orig, idx) {
			score += 15
		}
	}
	if matches[0] == 0 {
		score += 25
	}
	if strings.HasPrefix(string(folded), string(query)) {
		score += 50
	}

	gap := matches[len(matches)-1] - matches[0] - len(matches) + 1
	score -= 2*gap + matches[0]
	if n := len(folded); n < 20 {
		score += 20 - n
	}
	return max(score, 1)
}

// atWordStart reports whether runes[i] begins a word: it follows a space,
// punctuation or a symbol such as '+', or is an upper case letter after a
// lower case one.
func atWordStart(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsSpace(prev), unicode.IsPunct(prev), unicode.IsSymbol(prev):
		return true
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	}
	return false
}
