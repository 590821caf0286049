package layout

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlayFixture(t *testing.T) (*Layout, string) {
	t.Helper()
	l := mustNew(t, 4, 4)
	l.PaintRect(pos(1, 1), 3, 3, Seat)
	l.SetCell(pos(4, 1), Wall)
	id, err := l.Merge([]Position{pos(1, 1), pos(1, 2)}, 2)
	require.NoError(t, err)
	return l, id
}

func TestBounds(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	r, ok := Bounds([]Position{pos(3, 2), pos(2, 3), pos(3, 3), pos(2, 2)})
	require.True(t, ok)
	assert.Equal(t, Rect{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 3}, r)
}

func TestBuildOverlay_Priority(t *testing.T) {
	l, groupID := overlayFixture(t)
	_, err := l.Merge([]Position{pos(3, 1), pos(3, 2)}, 2)
	require.NoError(t, err)
	allocs := []Allocation{
		{TeamID: "t1", TeamName: "Red", Positions: []Position{pos(1, 1), pos(1, 2)}},
		{TeamID: "t2", TeamName: "Blue", Positions: []Position{pos(2, 2), pos(2, 3)}},
	}

	o := BuildOverlay(l.Snapshot(), allocs, nil)

	require.Len(t, o.Regions, 2)
	assert.Equal(t, Rect{MinRow: 1, MinCol: 1, MaxRow: 1, MaxCol: 2}, o.Regions[0].Bounds)
	assert.Equal(t, "Red", o.Regions[0].TeamName)
	assert.False(t, o.Regions[0].Dimmed)

	occupied := o.At(pos(1, 1))
	assert.Equal(t, LayerAllocation, occupied.Layer)
	assert.Equal(t, "t1", occupied.TeamID)
	assert.Equal(t, groupID, occupied.GroupID)
	assert.Equal(t, Seat, occupied.Type)

	assert.Equal(t, LayerGroup, o.At(pos(3, 1)).Layer)
	assert.Equal(t, LayerCell, o.At(pos(2, 1)).Layer)
	assert.Equal(t, Wall, o.At(pos(4, 1)).Type)
	assert.Equal(t, LayerEmpty, o.At(pos(4, 4)).Layer)
	assert.Len(t, o.Cells, 10)
}

func TestBuildOverlay_HighlightDimsOthers(t *testing.T) {
	l, _ := overlayFixture(t)
	allocs := []Allocation{
		{TeamID: "t1", Positions: []Position{pos(1, 1), pos(1, 2)}},
		{TeamID: "t2", Positions: []Position{pos(2, 2), pos(3, 3)}},
	}

	o := BuildOverlay(l.Snapshot(), allocs, []string{"t2"})

	assert.True(t, o.Regions[0].Dimmed)
	assert.False(t, o.Regions[1].Dimmed)
	assert.Equal(t, Rect{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 3}, o.Regions[1].Bounds)
	assert.True(t, o.At(pos(1, 2)).Dimmed)
	assert.False(t, o.At(pos(3, 3)).Dimmed)
	assert.Equal(t, LayerAllocation, o.At(pos(1, 2)).Layer, "dimmed allocations stay on the grid")
}

func TestBuildOverlay_IgnoresOffGridAndConflicts(t *testing.T) {
	l, _ := overlayFixture(t)
	allocs := []Allocation{
		{TeamID: "gone", Positions: []Position{pos(9, 9)}},
		{TeamID: "first", Positions: []Position{pos(2, 1), pos(7, 1)}},
		{TeamID: "second", Positions: []Position{pos(2, 1)}},
	}

	o := BuildOverlay(l.Snapshot(), allocs, nil)

	require.Len(t, o.Regions, 2)
	assert.Equal(t, []Position{pos(2, 1)}, o.Regions[0].Positions)
	assert.Equal(t, "first", o.At(pos(2, 1)).TeamID)
}

func TestBuildOverlay_LeavesInputsUntouched(t *testing.T) {
	l, _ := overlayFixture(t)
	s := l.Snapshot()
	allocs := []Allocation{{TeamID: "t1", Positions: []Position{pos(1, 1), pos(1, 2)}}}

	_ = BuildOverlay(s, allocs, []string{"x"})

	if diff := cmp.Diff(l.Snapshot(), s); diff != "" {
		t.Fatalf("snapshot changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Position{pos(1, 1), pos(1, 2)}, allocs[0].Positions)
}

func TestCellView_JSONLayerName(t *testing.T) {
	raw, err := json.Marshal(CellView{Position: pos(1, 2), Layer: LayerGroup, Type: Seat, GroupID: "g"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":{"row":1,"col":2},"layer":"group","type":"seat","group_id":"g"}`, string(raw))
}
