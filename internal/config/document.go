package config

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

// ScopeDocument declares one scope.
type ScopeDocument struct {
	// ID names the scope. Empty ids are generated on activation.
	ID string `toml:"id" yaml:"id"`

	// Parent is the id of the scope this one nests in.
	Parent string `toml:"parent" yaml:"parent"`

	// DefaultKeyEvent overrides the document default for this scope.
	DefaultKeyEvent string `toml:"default_key_event" yaml:"default_key_event"`

	// Keymap declares actions inline, in any form keymap.Decode accepts.
	Keymap map[string]any `toml:"keymap" yaml:"keymap"`

	// KeymapFile names a key map file, relative to the document. Inline
	// actions override actions of the same name from the file.
	KeymapFile string `toml:"keymap_file" yaml:"keymap_file"`

	// Handlers maps action names to handler sources.
	Handlers map[string]string `toml:"handlers" yaml:"handlers"`
}

// Document is a parsed keyscope document.
type Document struct {
	// Path is the file the document was loaded from.
	Path string `toml:"-" yaml:"-"`

	Options Options `toml:"options" yaml:"options"`

	// Scopes are listed outermost first.
	Scopes []ScopeDocument `toml:"scopes" yaml:"scopes"`
}

// Load reads the document at path and applies environment overrides.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	format, err := keymap.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(&doc.Options, os.Environ()); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse decodes a document. Options the document omits keep their defaults.
func Parse(data []byte, format keymap.Format, path string) (*Document, error) {
	doc := &Document{Path: path, Options: DefaultOptions()}

	var err error
	switch format {
	case keymap.FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(doc)
	case keymap.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(doc)
		if err != nil && len(bytes.TrimSpace(data)) == 0 {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", keymap.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, newParseError(path, err)
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) validate() error {
	seen := make(map[string]bool, len(d.Scopes))
	for _, s := range d.Scopes {
		if s.ID == "" {
			continue
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateScope, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Keymap returns the actions of a scope, merging its key map file under its
// inline actions.
func (d *Document) Keymap(s ScopeDocument) (keymap.Map, error) {
	m := make(keymap.Map)

	if s.KeymapFile != "" {
		loader := keymap.NewLoader()
		if d.Path != "" {
			loader.AddSearchPath(filepath.Dir(d.Path))
		}
		fromFile, err := loader.LoadFile(s.KeymapFile)
		if err != nil {
			return nil, fmt.Errorf("scope %q: %w", s.ID, err)
		}
		maps.Copy(m, fromFile)
	}

	inline, err := keymap.Decode(s.Keymap)
	if err != nil {
		return nil, fmt.Errorf("scope %q: %w", s.ID, err)
	}
	maps.Copy(m, inline)
	return m, nil
}

// ScopeOptions returns the engine options of a scope.
func (d *Document) ScopeOptions(s ScopeDocument) (input.ScopeOptions, error) {
	opts := input.ScopeOptions{Parent: s.Parent}
	if s.DefaultKeyEvent != "" {
		t, err := key.ParseEventType(s.DefaultKeyEvent)
		if err != nil {
			return opts, fmt.Errorf("scope %q: %w", s.ID, err)
		}
		opts.DefaultKeyEvent = &t
	}
	return opts, nil
}

// HandlerCompiler turns the source of a handler into a handler.
type HandlerCompiler func(scopeID, action, source string) (input.Handler, error)

// DefaultHandler returns the handler for a declared action that has no
// handler source.
type DefaultHandler func(scopeID, action string) input.Handler

// Activate activates every scope of the document on e, outermost first, and
// returns the ids in use. On error, scopes activated so far are deactivated
// again.
func (d *Document) Activate(e *input.Engine, compile HandlerCompiler) ([]string, error) {
	return d.ActivateWithDefault(e, compile, nil)
}

// ActivateWithDefault is Activate, giving every declared action without a
// handler source the handler returned by def.
func (d *Document) ActivateWithDefault(e *input.Engine, compile HandlerCompiler, def DefaultHandler) ([]string, error) {
	ids := make([]string, 0, len(d.Scopes))
	rollback := func() {
		for _, id := range slices.Backward(ids) {
			_ = e.NotifyScopeInactive(id)
		}
	}

	for _, s := range d.Scopes {
		id, err := d.activateScope(e, s, compile, def)
		if err != nil {
			rollback()
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *Document) activateScope(e *input.Engine, s ScopeDocument, compile HandlerCompiler, def DefaultHandler) (string, error) {
	actions, err := d.Keymap(s)
	if err != nil {
		return "", err
	}
	opts, err := d.ScopeOptions(s)
	if err != nil {
		return "", err
	}

	handlers := make(map[string]input.Handler, len(actions))
	for _, action := range slices.Sorted(maps.Keys(s.Handlers)) {
		if compile == nil {
			return "", fmt.Errorf("scope %q: handler %q: no handler compiler", s.ID, action)
		}
		h, err := compile(s.ID, action, s.Handlers[action])
		if err != nil {
			return "", fmt.Errorf("scope %q: handler %q: %w", s.ID, action, err)
		}
		handlers[action] = h
	}
	if def != nil {
		for action := range actions {
			if _, ok := handlers[action]; !ok {
				handlers[action] = def(s.ID, action)
			}
		}
	}

	return e.NotifyScopeActive(s.ID, actions, handlers, opts)
}
