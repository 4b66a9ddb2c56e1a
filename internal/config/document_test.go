package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

const tomlDocument = `
[options]
enable_hard_sequences = true
default_key_event = "keydown"
ignore_events_condition = 'Target == "input"'

[options.custom_key_aliases]
"166" = "BrowserBack"

[[scopes]]
id = "app"
[scopes.keymap]
QUIT = "control+q"
[scopes.handlers]
QUIT = "quit"

[[scopes]]
id = "editor"
default_key_event = "keypress"
[scopes.keymap]
SAVE = "control+s"
MOVE = ["up", "k"]
DELETE_LINE = { sequence = "d d", action = "keyup" }
[scopes.handlers]
SAVE = "save"
`

const yamlDocument = `
options:
  allow_combination_submatches: true
  platform: mac
scopes:
  - id: app
    keymap:
      QUIT: control+q
  - id: editor
    parent: app
    keymap:
      SAVE:
        sequences: ["control+s", {sequence: "meta+s", action: keydown}]
        name: Save
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseTOML(t *testing.T) {
	doc, err := Parse([]byte(tomlDocument), keymap.FormatTOML, "keys.toml")
	require.NoError(t, err)

	assert.True(t, doc.Options.EnableHardSequences)
	assert.Equal(t, "keydown", doc.Options.DefaultKeyEvent)
	assert.True(t, doc.Options.SimulateMissingKeypressEvents, "omitted options keep defaults")
	assert.Equal(t, map[string]string{"166": "BrowserBack"}, doc.Options.CustomKeyAliases)

	require.Len(t, doc.Scopes, 2)
	editor := doc.Scopes[1]
	assert.Equal(t, "editor", editor.ID)
	assert.Equal(t, "save", editor.Handlers["SAVE"])

	m, err := doc.Keymap(editor)
	require.NoError(t, err)
	assert.Equal(t, keymap.Keys("up", "k"), m["MOVE"])
	assert.Equal(t, []keymap.Sequence{{Sequence: "d d", Event: "keyup"}}, m["DELETE_LINE"].Sequences)

	opts, err := doc.ScopeOptions(editor)
	require.NoError(t, err)
	require.NotNil(t, opts.DefaultKeyEvent)
	assert.Equal(t, key.KeyPress, *opts.DefaultKeyEvent)
}

func TestParseYAML(t *testing.T) {
	doc, err := Parse([]byte(yamlDocument), keymap.FormatYAML, "keys.yaml")
	require.NoError(t, err)

	assert.True(t, doc.Options.AllowCombinationSubmatches)
	assert.Equal(t, "mac", doc.Options.Platform)
	require.Len(t, doc.Scopes, 2)
	assert.Equal(t, "app", doc.Scopes[1].Parent)

	m, err := doc.Keymap(doc.Scopes[1])
	require.NoError(t, err)
	save := m["SAVE"]
	assert.Equal(t, "Save", save.Name)
	assert.Equal(t, []keymap.Sequence{
		{Sequence: "control+s"},
		{Sequence: "meta+s", Event: "keydown"},
	}, save.Sequences)
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse([]byte("[options]\nenable_hard_sequences = \n"), keymap.FormatTOML, "bad.toml")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.toml", pe.Path)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Error(), "bad.toml")

	_, err = Parse([]byte("options:\n  platform: [\n"), keymap.FormatYAML, "bad.yaml")
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.yaml", pe.Path)
	assert.Positive(t, pe.Line)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("[options]\nno_such_option = true\n"), keymap.FormatTOML, "x.toml")
	assert.Error(t, err)

	_, err = Parse([]byte("options:\n  no_such_option: true\n"), keymap.FormatYAML, "x.yaml")
	assert.Error(t, err)
}

func TestParseDuplicateScope(t *testing.T) {
	_, err := Parse([]byte("[[scopes]]\nid = \"a\"\n[[scopes]]\nid = \"a\"\n"), keymap.FormatTOML, "x.toml")
	assert.ErrorIs(t, err, ErrDuplicateScope)
}

func TestParseEmptyYAML(t *testing.T) {
	doc, err := Parse([]byte("\n"), keymap.FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), doc.Options)
	assert.Empty(t, doc.Scopes)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "keys.ini", "")
	_, err := Load(path)
	assert.ErrorIs(t, err, keymap.ErrUnsupportedFormat)
}

func TestLoadAppliesEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "keys.toml", tomlDocument)
	t.Setenv("KEYSCOPE_ENABLE_HARD_SEQUENCES", "false")
	t.Setenv("KEYSCOPE_LOG_LEVEL", "debug")

	doc, err := Load(path)
	require.NoError(t, err)
	assert.False(t, doc.Options.EnableHardSequences)
	assert.Equal(t, "debug", doc.Options.LogLevel)
	assert.Equal(t, path, doc.Path)
}

func TestKeymapFileMergedUnderInline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "SAVE: control+s\nOPEN: control+o\n")
	path := writeFile(t, dir, "keys.toml", `
[[scopes]]
id = "editor"
keymap_file = "base.yaml"
[scopes.keymap]
SAVE = "meta+s"
`)

	doc, err := Load(path)
	require.NoError(t, err)
	m, err := doc.Keymap(doc.Scopes[0])
	require.NoError(t, err)
	assert.Equal(t, keymap.Keys("meta+s"), m["SAVE"])
	assert.Equal(t, keymap.Keys("control+o"), m["OPEN"])
}

func TestActivate(t *testing.T) {
	doc, err := Parse([]byte(tomlDocument), keymap.FormatTOML, "keys.toml")
	require.NoError(t, err)

	cfg, err := doc.Options.EngineConfig(nil)
	require.NoError(t, err)
	e := input.New(cfg)
	defer e.Close()

	var fired []string
	compile := func(scopeID, action, source string) (input.Handler, error) {
		return func(*input.Event) { fired = append(fired, scopeID+":"+source) }, nil
	}

	ids, err := doc.Activate(e, compile)
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "editor"}, ids)
	assert.Equal(t, []string{"editor", "app"}, e.Scopes())

	e.NotifyKeyTransition(key.Transition{Key: "Control", Type: key.KeyDown, Modifiers: key.ModCtrl})
	e.NotifyKeyTransition(key.Transition{Key: "q", Type: key.KeyDown, Modifiers: key.ModCtrl})
	assert.Equal(t, []string{"app:quit"}, fired)
}

func TestActivateRollsBack(t *testing.T) {
	doc, err := Parse([]byte(`
[[scopes]]
id = "good"
[scopes.keymap]
A = "a"

[[scopes]]
id = "bad"
[scopes.keymap]
B = "control+nokey"
`), keymap.FormatTOML, "keys.toml")
	require.NoError(t, err)

	e := input.New(input.DefaultConfig())
	defer e.Close()

	_, err = doc.Activate(e, nil)
	assert.ErrorIs(t, err, key.ErrInvalidKeyName)
	assert.Empty(t, e.Scopes())
}

func TestActivateHandlerError(t *testing.T) {
	doc, err := Parse([]byte(tomlDocument), keymap.FormatTOML, "keys.toml")
	require.NoError(t, err)

	e := input.New(input.DefaultConfig())
	defer e.Close()

	boom := errors.New("boom")
	_, err = doc.Activate(e, func(string, string, string) (input.Handler, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, e.Scopes())
}

func TestActivateWithDefault(t *testing.T) {
	doc, err := Parse([]byte(tomlDocument), keymap.FormatTOML, "keys.toml")
	require.NoError(t, err)

	e := input.New(input.DefaultConfig())
	defer e.Close()

	var fired []string
	compile := func(scopeID, action, source string) (input.Handler, error) {
		return func(*input.Event) { fired = append(fired, "compiled:"+action) }, nil
	}
	def := func(scopeID, action string) input.Handler {
		return func(*input.Event) { fired = append(fired, "default:"+action) }
	}

	_, err = doc.ActivateWithDefault(e, compile, def)
	require.NoError(t, err)

	for _, d := range e.ApplicationKeyMap() {
		assert.True(t, d.Handled, d.Action)
	}

	e.NotifyKeyTransition(key.Transition{Key: "ArrowUp", Type: key.KeyDown})
	e.NotifyKeyTransition(key.Transition{Key: "ArrowUp", Type: key.KeyPress})
	assert.Equal(t, []string{"default:MOVE"}, fired)
}
