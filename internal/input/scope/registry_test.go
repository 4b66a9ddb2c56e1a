package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

func noop(*Event) {}

func TestRegistryAddOrdersInnermostFirst(t *testing.T) {
	r := NewRegistry()

	_, err := r.Add("app", keymap.Map{"QUIT": keymap.Keys("ctrl+q")}, nil, Options{})
	require.NoError(t, err)
	_, err = r.Add("editor", keymap.Map{"SAVE": keymap.Keys("ctrl+s")}, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"editor", "app"}, r.IDs())
	pos, ok := r.Position("app")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "editor", r.At(0).ID())
	assert.Nil(t, r.At(2))
}

func TestRegistryAddWithParent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("app", nil, nil, Options{})
	require.NoError(t, err)
	_, err = r.Add("dialog", nil, nil, Options{})
	require.NoError(t, err)
	_, err = r.Add("panel", nil, nil, Options{Parent: "app"})
	require.NoError(t, err)

	assert.Equal(t, []string{"dialog", "panel", "app"}, r.IDs())
	s, ok := r.Get("panel")
	require.True(t, ok)
	assert.Equal(t, "app", s.Parent())
}

func TestRegistryGeneratesID(t *testing.T) {
	r := NewRegistry()
	id, err := r.Add("", nil, nil, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, ok := r.Position(id)
	assert.True(t, ok)
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("a", nil, nil, Options{})
	require.NoError(t, err)
	_, err = r.Add("a", nil, nil, Options{})
	assert.ErrorIs(t, err, ErrDuplicateScope)
}

func TestRegistryInvalidKeyName(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("a", keymap.Map{"X": keymap.Keys("ctrl+nothing")}, nil, Options{})
	assert.ErrorIs(t, err, key.ErrInvalidKeyName)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRemoveKeepsIndexConsistent(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"d", "c", "b", "a"} {
		_, err := r.Add(id, nil, nil, Options{})
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a", "b", "c", "d"}, r.IDs())

	require.NoError(t, r.Remove("b"))

	for i, id := range []string{"a", "c", "d"} {
		pos, ok := r.Position(id)
		require.True(t, ok)
		assert.Equal(t, i, pos, "position of %s", id)
		assert.Equal(t, id, r.At(pos).ID())
	}
	_, ok := r.Position("b")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Remove("b"), ErrUnknownScope)
}

func TestRegistryUpdateReplacesSnapshot(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("editor", keymap.Map{"SAVE": keymap.Keys("ctrl+s")}, map[string]Handler{"SAVE": noop}, Options{})
	require.NoError(t, err)

	before := r.Snapshot(0)
	require.NoError(t, r.Update("editor", keymap.Map{"OPEN": keymap.Keys("ctrl+o")}, nil, Options{}))

	assert.True(t, before[0].Table().Has("SAVE"))
	_, ok := before[0].Handler("SAVE")
	assert.True(t, ok)

	after, _ := r.Get("editor")
	assert.True(t, after.Table().Has("OPEN"))
	assert.False(t, after.Table().Has("SAVE"))
	assert.False(t, after.HasHandlers())

	assert.True(t, r.HasAction("OPEN"))
	assert.False(t, r.HasAction("SAVE"))

	assert.ErrorIs(t, r.Update("missing", nil, nil, Options{}), ErrUnknownScope)
}

func TestRegistryLongestSequence(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 1, r.LongestSequence())

	_, err := r.Add("a", keymap.Map{"X": keymap.Keys("g g g")}, nil, Options{})
	require.NoError(t, err)
	_, err = r.Add("b", keymap.Map{"Y": keymap.Keys("d d")}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, r.LongestSequence())

	require.NoError(t, r.Update("a", keymap.Map{"X": keymap.Keys("g")}, nil, Options{}))
	assert.Equal(t, 2, r.LongestSequence())

	require.NoError(t, r.Remove("b"))
	assert.Equal(t, 1, r.LongestSequence())
}

func TestRegistryDefaultEvent(t *testing.T) {
	r := NewRegistry(WithDefaultEvent(key.KeyDown))
	up := key.KeyUp

	_, err := r.Add("a", keymap.Map{"X": keymap.Keys("x")}, nil, Options{})
	require.NoError(t, err)
	_, err = r.Add("b", keymap.Map{"Y": keymap.Keys("y")}, nil, Options{DefaultKeyEvent: &up})
	require.NoError(t, err)

	a, _ := r.Get("a")
	b, _ := r.Get("b")
	assert.Equal(t, key.KeyDown, a.Table().Bindings("X")[0].EventType)
	assert.Equal(t, key.KeyUp, b.Table().Bindings("Y")[0].EventType)
}

func TestRegistrySubscribe(t *testing.T) {
	r := NewRegistry()
	var versions []uint64
	r.Subscribe(func(r *Registry) { versions = append(versions, r.Version()) })

	_, err := r.Add("a", nil, nil, Options{})
	require.NoError(t, err)
	require.NoError(t, r.Update("a", nil, nil, Options{}))
	require.NoError(t, r.Remove("a"))
	r.Clear()

	assert.Equal(t, []uint64{1, 2, 3, 4}, versions)
}

func TestScopeHandlersSkipNil(t *testing.T) {
	r := NewRegistry()
	_, err := r.Add("a", nil, map[string]Handler{"A": noop, "B": nil}, Options{})
	require.NoError(t, err)

	s, _ := r.Get("a")
	assert.Equal(t, []string{"A"}, s.HandlerNames())
}

func TestEventStopPropagation(t *testing.T) {
	ev := &Event{Action: "SAVE"}
	assert.False(t, ev.PropagationStopped())
	ev.StopPropagation()
	assert.True(t, ev.PropagationStopped())
}
