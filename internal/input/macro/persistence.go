package macro

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/keyscope/internal/input/key"
)

const currentVersion = 1

// ErrUnsupportedVersion is returned for session files of a newer version.
var ErrUnsupportedVersion = errors.New("unsupported session version")

// persistedStep is the YAML form of a Step.
type persistedStep struct {
	Key       string        `yaml:"key"`
	Code      int           `yaml:"code,omitempty"`
	Event     key.EventType `yaml:"event"`
	Modifiers []string      `yaml:"modifiers,omitempty,flow"`
	Target    string        `yaml:"target,omitempty"`
	Origin    string        `yaml:"origin,omitempty"`
	Repeat    bool          `yaml:"repeat,omitempty"`
	OffsetMS  int64         `yaml:"offset_ms"`
}

type persistedSession struct {
	Version    int             `yaml:"version"`
	RecordedAt time.Time       `yaml:"recorded_at"`
	Steps      []persistedStep `yaml:"steps"`
}

func toPersistedStep(st Step) persistedStep {
	t := st.Transition
	var mods []string
	for _, mk := range key.ModifierKeys {
		if t.Modifiers.Has(mk.Mod) {
			mods = append(mods, mk.Name)
		}
	}
	return persistedStep{
		Key:       t.Key,
		Code:      t.Code,
		Event:     t.Type,
		Modifiers: mods,
		Target:    t.Target,
		Origin:    t.Origin,
		Repeat:    t.Repeat,
		OffsetMS:  st.Offset.Milliseconds(),
	}
}

func toStep(p persistedStep) (Step, error) {
	var mods key.Modifier
	for _, name := range p.Modifiers {
		m := key.ModifierForKey(key.StandardizeName(name))
		if m == key.ModNone {
			return Step{}, fmt.Errorf("unknown modifier %q", name)
		}
		mods = mods.With(m)
	}
	if strings.TrimSpace(p.Key) == "" && p.Key != key.Space {
		return Step{}, errors.New("step without key")
	}
	return Step{
		Transition: key.Transition{
			Key:       p.Key,
			Code:      p.Code,
			Type:      p.Event,
			Modifiers: mods,
			Target:    p.Target,
			Origin:    p.Origin,
			Repeat:    p.Repeat,
		},
		Offset: time.Duration(p.OffsetMS) * time.Millisecond,
	}, nil
}

// Marshal encodes a session as YAML.
func Marshal(s Session) ([]byte, error) {
	ps := persistedSession{
		Version:    currentVersion,
		RecordedAt: s.RecordedAt,
		Steps:      make([]persistedStep, len(s.Steps)),
	}
	for i, st := range s.Steps {
		ps.Steps[i] = toPersistedStep(st)
	}
	return yaml.Marshal(ps)
}

// Unmarshal decodes a YAML session.
func Unmarshal(data []byte) (Session, error) {
	var ps persistedSession
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	if ps.Version > currentVersion {
		return Session{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, ps.Version)
	}

	s := Session{RecordedAt: ps.RecordedAt, Steps: make([]Step, 0, len(ps.Steps))}
	for i, p := range ps.Steps {
		st, err := toStep(p)
		if err != nil {
			return Session{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		s.Steps = append(s.Steps, st)
	}
	return s, nil
}

// Save writes s to path atomically using a temporary file and rename.
func Save(s Session, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Load reads a session from path.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}
	return Unmarshal(data)
}
