package key

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

// shiftedKeys maps US layout keys to the character they produce with Shift.
// Letters are handled by case conversion.
var shiftedKeys = map[string]string{
	"`": "~", "1": "!", "2": "@", "3": "#", "4": "$", "5": "%",
	"6": "^", "7": "&", "8": "*", "9": "(", "0": ")", "-": "_",
	"=": "+", "[": "{", "]": "}", "\\": "|", ";": ":", "'": "\"",
	",": "<", ".": ">", "/": "?",
}

// altedKeys maps US layout keys to the character macOS produces with Option.
var altedKeys = map[string]string{
	"1": "¡", "2": "™", "3": "£", "4": "¢", "5": "∞", "6": "§",
	"7": "¶", "8": "•", "9": "ª", "0": "º", "-": "–", "=": "≠",
	"q": "œ", "w": "∑", "e": "´", "r": "®", "t": "†", "y": "¥",
	"u": "¨", "i": "ˆ", "o": "ø", "p": "π", "[": "“", "]": "‘",
	"\\": "«", "a": "å", "s": "ß", "d": "∂", "f": "ƒ", "g": "©",
	"h": "˙", "j": "∆", "k": "˚", "l": "¬", ";": "…", "'": "æ",
	"z": "Ω", "x": "≈", "c": "ç", "v": "√", "b": "∫", "n": "˜",
	"m": "µ", ",": "≤", ".": "≥", "/": "÷",
}

// altShiftedKeys maps US layout keys to the character macOS produces with
// Option and Shift.
var altShiftedKeys = map[string]string{
	"1": "⁄", "2": "€", "3": "‹", "4": "›", "5": "ﬁ",
	"6": "ﬂ", "7": "‡", "8": "°", "9": "·", "0": "‚", "-": "—",
	"=": "±", "q": "Œ", "w": "„", "e": "´", "r": "‰", "t": "ˇ",
	"y": "Á", "u": "¨", "i": "ˆ", "o": "Ø", "p": "∏", "[": "”",
	"]": "’", "\\": "»", "a": "Å", "s": "Í", "d": "Î", "f": "Ï",
	"g": "˝", "h": "Ó", "j": "Ô", "l": "Ò", ";": "Ú", "'": "Æ",
	"z": "¸", "x": "˛", "c": "Ç", "v": "◊", "b": "ı", "n": "˜",
	"m": "Â", ",": "¯", ".": "˘", "/": "¿",
}

// layoutAliases maps names some platforms or keyboard layouts report to the
// canonical key name.
var layoutAliases = map[string]string{
	"OS":       Meta,
	"Win":      Meta,
	"Spacebar": Space,
	"Left":     ArrowLeft,
	"Right":    ArrowRight,
	"Up":       ArrowUp,
	"Down":     ArrowDown,
	"Del":      Delete,
	"Esc":      Escape,
	"Scroll":   ScrollLock,
	"Apps":     ContextMenu,
	"Add":      "+",
	"Subtract": "-",
	"Multiply": "*",
	"Divide":   "/",
	"Decimal":  ".",
	"Crsel":    "CrSel",
	"Exsel":    "ExSel",
}

var (
	unshiftedKeys     = invert(shiftedKeys)
	unaltedKeys       = invert(altedKeys)
	unaltShiftedKeys  = invert(altShiftedKeys)
	layoutAliasGroups = groupLayoutAliases()
)

// invert builds the reverse of a one-to-one-or-many dictionary. Several keys
// can produce the same character, so the result is a multimap.
func invert(m map[string]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[v] = append(out[v], k)
	}
	for v := range out {
		slices.Sort(out[v])
	}
	return out
}

// groupLayoutAliases indexes every name, canonical or not, to the full set of
// equivalent names.
func groupLayoutAliases() map[string][]string {
	groups := make(map[string][]string)
	for alias, canonical := range layoutAliases {
		if len(groups[canonical]) == 0 {
			groups[canonical] = []string{canonical}
		}
		groups[canonical] = append(groups[canonical], alias)
	}
	out := make(map[string][]string)
	for _, names := range groups {
		slices.Sort(names)
		for _, name := range names {
			out[name] = names
		}
	}
	return out
}

func lookup(m map[string]string, name string) ([]string, bool) {
	if v, ok := m[name]; ok {
		return []string{v}, true
	}
	return nil, false
}

// mapSingleRune applies fn to name when it is exactly one rune.
func mapSingleRune(name string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || size != len(name) {
		return name
	}
	return string(fn(r))
}

// ResolveShifted returns the names key produces while Shift is held.
// Unknown single characters fall back to their upper case form.
func ResolveShifted(name string) []string {
	if v, ok := lookup(shiftedKeys, name); ok {
		return v
	}
	return []string{mapSingleRune(name, unicode.ToUpper)}
}

// ResolveUnshifted returns the names that produce key while Shift is held.
// Unknown single characters fall back to their lower case form.
func ResolveUnshifted(name string) []string {
	if v, ok := unshiftedKeys[name]; ok {
		return v
	}
	return []string{mapSingleRune(name, unicode.ToLower)}
}

// ResolveAlted returns the names key produces while Option is held on macOS.
func ResolveAlted(name string) []string {
	if v, ok := lookup(altedKeys, name); ok {
		return v
	}
	return []string{name}
}

// ResolveUnalted returns the names that produce key while Option is held.
func ResolveUnalted(name string) []string {
	if v, ok := unaltedKeys[name]; ok {
		return v
	}
	return []string{name}
}

// ResolveAltShifted returns the names key produces while Option and Shift
// are held on macOS.
func ResolveAltShifted(name string) []string {
	if v, ok := lookup(altShiftedKeys, name); ok {
		return v
	}
	return []string{name}
}

// ResolveUnaltShifted returns the names that produce key while Option and
// Shift are held.
func ResolveUnaltShifted(name string) []string {
	if v, ok := unaltShiftedKeys[name]; ok {
		return v
	}
	return []string{name}
}

// ResolveLayoutAliases returns every name equivalent to key across operating
// systems and keyboard layouts, key itself first.
func ResolveLayoutAliases(name string) []string {
	return appendUnique([]string{name}, layoutAliasGroups[name]...)
}

// Aliases returns every name key may be reported under given the modifiers
// held in its combination, key itself first.
func Aliases(name string, shift, alt bool) []string {
	out := []string{name}
	switch {
	case shift && alt:
		out = appendUnique(out, ResolveUnaltShifted(name)...)
		out = appendUnique(out, ResolveAltShifted(name)...)
	case shift:
		out = appendUnique(out, ResolveUnshifted(name)...)
		out = appendUnique(out, ResolveShifted(name)...)
	case alt:
		out = appendUnique(out, ResolveUnalted(name)...)
		out = appendUnique(out, ResolveAlted(name)...)
	default:
		out = appendUnique(out, ResolveLayoutAliases(name)...)
	}
	return out
}

func appendUnique(dst []string, names ...string) []string {
	for _, n := range names {
		dup := false
		for _, d := range dst {
			if d == n {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, n)
		}
	}
	return dst
}
