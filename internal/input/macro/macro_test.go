package macro

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

type sinkFunc func(key.Transition) bool

func (f sinkFunc) NotifyKeyTransition(t key.Transition) bool { return f(t) }

func newEngine(t *testing.T) (*input.Engine, *[]string) {
	t.Helper()
	cfg := input.DefaultConfig()
	cfg.Platform = input.PlatformOther
	e := input.New(cfg)
	t.Cleanup(func() { _ = e.Close() })

	var fired []string
	on := func(ev *input.Event) { fired = append(fired, ev.Action) }
	_, err := e.NotifyScopeActive("main", keymap.Map{
		"SAVE":   keymap.Sequences(keymap.On(key.KeyDown, "control+s")),
		"GOTOP":  keymap.Keys("g g"),
		"ESCAPE": keymap.Sequences(keymap.On(key.KeyDown, "Escape")),
	}, map[string]input.Handler{"SAVE": on, "GOTOP": on, "ESCAPE": on}, input.ScopeOptions{})
	require.NoError(t, err)
	return e, &fired
}

func typeKeys(e *input.Engine) {
	send := func(name string, typ key.EventType, mods key.Modifier) {
		e.NotifyKeyTransition(key.NewTransition(name, typ, mods))
	}
	send("Control", key.KeyDown, key.ModCtrl)
	send("s", key.KeyDown, key.ModCtrl)
	send("s", key.KeyUp, key.ModCtrl)
	send("Control", key.KeyUp, key.ModNone)
	for range 2 {
		send("g", key.KeyDown, key.ModNone)
		send("g", key.KeyPress, key.ModNone)
		send("g", key.KeyUp, key.ModNone)
	}
}

func TestRecorderCapturesEngineTransitions(t *testing.T) {
	e, fired := newEngine(t)
	rec := NewRecorder()
	e.Hooks().RegisterNamed(rec, "macro")

	typeKeys(e)
	assert.Zero(t, rec.Len(), "nothing recorded before Start")

	require.True(t, rec.Start())
	assert.False(t, rec.Start())
	typeKeys(e)
	assert.True(t, rec.IsRecording())

	s := rec.Stop()
	assert.False(t, rec.IsRecording())
	require.Len(t, s.Steps, 10)
	assert.Equal(t, "Control", s.Steps[0].Transition.Key)
	assert.Equal(t, key.ModCtrl, s.Steps[1].Transition.Modifiers)
	assert.Equal(t, []string{"SAVE", "GOTOP", "SAVE", "GOTOP"}, *fired)

	assert.Empty(t, rec.Stop().Steps)
}

func TestPlayerReplaysIntoEngine(t *testing.T) {
	recorded, _ := newEngine(t)
	rec := NewRecorder()
	recorded.Hooks().Register(rec)
	rec.Start()
	typeKeys(recorded)
	s := rec.Stop()

	e, fired := newEngine(t)
	n, err := NewPlayer(e).Play(context.Background(), s, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"SAVE", "GOTOP"}, *fired)
}

func TestPlayerKeepsTiming(t *testing.T) {
	s := Session{Steps: []Step{
		{Transition: key.Transition{Key: "a"}},
		{Transition: key.Transition{Key: "b"}, Offset: 40 * time.Millisecond},
	}}

	var at []time.Time
	sink := sinkFunc(func(key.Transition) bool {
		at = append(at, time.Now())
		return false
	})

	_, err := NewPlayer(sink).Play(context.Background(), s, 1)
	require.NoError(t, err)
	require.Len(t, at, 2)
	assert.GreaterOrEqual(t, at[1].Sub(at[0]), 30*time.Millisecond)
}

func TestPlayerCancel(t *testing.T) {
	s := Session{Steps: []Step{
		{Transition: key.Transition{Key: "a"}},
		{Transition: key.Transition{Key: "b"}, Offset: time.Hour},
	}}

	var got []string
	sink := sinkFunc(func(t key.Transition) bool {
		got = append(got, t.Key)
		return false
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := NewPlayer(sink)
	_, err := p.Play(ctx, s, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"a"}, got)
	assert.False(t, p.IsPlaying())
}

func TestPlayerRejectsConcurrentPlay(t *testing.T) {
	var p *Player
	sink := sinkFunc(func(key.Transition) bool {
		_, err := p.Play(context.Background(), Session{}, 0)
		assert.ErrorIs(t, err, ErrAlreadyPlaying)
		return false
	})
	p = NewPlayer(sink)

	_, err := p.Play(context.Background(), Session{Steps: []Step{{Transition: key.Transition{Key: "a"}}}}, 0)
	require.NoError(t, err)
}

func TestSaveLoad(t *testing.T) {
	s := Session{
		RecordedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Steps: []Step{
			{Transition: key.Transition{Key: "Control", Type: key.KeyDown, Modifiers: key.ModCtrl}},
			{
				Transition: key.Transition{Key: "s", Code: 83, Type: key.KeyDown, Modifiers: key.ModCtrl | key.ModShift, Target: "input", Origin: "editor", Repeat: true},
				Offset:     120 * time.Millisecond,
			},
			{Transition: key.Transition{Key: " ", Type: key.KeyPress}, Offset: time.Second},
		},
	}

	path := filepath.Join(t.TempDir(), "sessions", "s.yaml")
	require.NoError(t, Save(s, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, time.Second, got.Duration())
	assert.Equal(t, "s", got.Transitions()[1].Key)
}

func TestUnmarshal(t *testing.T) {
	s, err := Unmarshal([]byte(`
version: 1
steps:
  - {key: Control, event: keydown, modifiers: [ctrl], offset_ms: 0}
  - {key: x, event: keyup, modifiers: [control], offset_ms: 15}
`))
	require.NoError(t, err)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, key.KeyUp, s.Steps[1].Transition.Type)
	assert.Equal(t, key.ModCtrl, s.Steps[1].Transition.Modifiers)
	assert.Equal(t, 15*time.Millisecond, s.Steps[1].Offset)

	_, err = Unmarshal([]byte("version: 99\n"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Unmarshal([]byte("steps:\n  - {key: a, event: keyhold}\n"))
	assert.Error(t, err)

	_, err = Unmarshal([]byte("steps:\n  - {key: a, modifiers: [hyper]}\n"))
	assert.ErrorContains(t, err, "hyper")

	_, err = Unmarshal([]byte("steps:\n  - {event: keydown}\n"))
	assert.ErrorContains(t, err, "step 1")
}
