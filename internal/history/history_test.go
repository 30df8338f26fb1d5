package history

import (
	"fmt"
	"testing"

	"site-mapper/internal/annotation"
	"site-mapper/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scene returns a list of n circles with deterministic ids.
func scene(n int) annotation.List {
	l := annotation.List{}
	for i := 0; i < n; i++ {
		l = append(l, annotation.Circle{ID: fmt.Sprintf("c%d", i), Radius: float64(i)})
	}
	return l
}

func TestNew_InitialEntry(t *testing.T) {
	h := New(0, scene(2))

	assert.Equal(t, MaxHistory, h.Capacity())
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Step())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, scene(2), h.Current())
}

func TestUndoRedo_NoOpAtEnds(t *testing.T) {
	h := New(5, scene(0))

	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Step())
}

func TestSnapshot_StoresByValue(t *testing.T) {
	h := New(5, scene(0))
	live := annotation.List{annotation.Line{ID: "l", Points: []geometry.Point2D{geometry.Pt(1, 1)}}}
	h.Snapshot(live)

	live[0].(annotation.Line).Points[0] = geometry.Pt(99, 99)

	got := h.Current()
	assert.Equal(t, geometry.Pt(1, 1), got[0].(annotation.Line).Points[0])
}

func TestSnapshot_TruncatesFuture(t *testing.T) {
	h := New(10, scene(0))
	h.Snapshot(scene(1))
	h.Snapshot(scene(2))
	h.Snapshot(scene(3))

	_, ok := h.Undo()
	require.True(t, ok)
	_, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, 1, h.Step())

	h.Snapshot(scene(7))

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Step())
	assert.False(t, h.CanRedo())
	assert.Equal(t, scene(7), h.Current())
}

func TestSnapshot_BoundedByCapacity(t *testing.T) {
	const k = 17
	h := New(MaxHistory, scene(0))

	for i := 1; i <= MaxHistory+k; i++ {
		h.Snapshot(scene(i))
		require.LessOrEqual(t, h.Len(), MaxHistory)
	}
	assert.Equal(t, MaxHistory, h.Len())
	assert.Equal(t, scene(MaxHistory+k), h.Current())

	for i := 0; i < MaxHistory-1; i++ {
		_, ok := h.Undo()
		require.True(t, ok, "undo %d", i)
	}
	_, ok := h.Undo()
	assert.False(t, ok)

	// Oldest retained entry is the snapshot taken k+1 commits in.
	assert.Equal(t, scene(k+1), h.Current())
}

func TestUndoThenRedo_RestoresState(t *testing.T) {
	h := New(4, scene(0))
	for i := 1; i <= 9; i++ {
		h.Snapshot(scene(i))

		before := h.Current()
		_, ok := h.Undo()
		require.True(t, ok)
		redone, ok := h.Redo()
		require.True(t, ok)
		assert.Equal(t, before, redone)
	}
}

func TestReset(t *testing.T) {
	h := New(3, scene(0))
	h.Snapshot(scene(1))
	h.Snapshot(scene(2))

	h.Reset(scene(5))

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, scene(5), h.Current())
}
