package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/model"
	"github.com/iliyamo/venue-seat-layout/internal/repository"
)

func pos(r, c int) layout.Position { return layout.Position{Row: r, Col: c} }

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestLoad_NeverSavedRoomIsEmpty(t *testing.T) {
	f := newFixture(t)

	rm, l, err := f.svc.Load(context.Background(), owner, 1)
	require.NoError(t, err)
	assert.Equal(t, "Main", rm.Name)
	assert.Equal(t, 6, l.Rows())
	assert.Equal(t, 6, l.Cols())
	assert.Zero(t, l.Len())
}

func TestLoad_RebuildsFromSeatRows(t *testing.T) {
	f := newFixture(t)
	f.layouts.seats[2] = []layout.SeatRecord{
		{RowNumber: 1, ColumnNumber: 1, SeatGroupID: strPtr("g"), TeamSizePreference: intPtr(2)},
		{RowNumber: 1, ColumnNumber: 2, SeatGroupID: strPtr("g"), TeamSizePreference: intPtr(2)},
		{RowNumber: 3, ColumnNumber: 4},
	}

	_, l, err := f.svc.Load(context.Background(), owner, 2)
	require.NoError(t, err)
	assert.Equal(t, []layout.Position{pos(1, 1), pos(1, 2), pos(3, 4)}, l.Snapshot().Seats())
	require.Len(t, l.Groups(), 1)
	assert.Equal(t, "g", l.Groups()[0].ID)
}

func TestLoad_OtherOwnersRoomIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Load(context.Background(), owner, 9)
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestSave_PersistsInvalidatesAndPublishes(t *testing.T) {
	f := newFixture(t)
	rm, l, err := f.svc.Load(context.Background(), owner, 1)
	require.NoError(t, err)
	l.PaintRect(pos(1, 1), 1, 4, layout.Seat)
	l.PaintRect(pos(6, 1), 1, 6, layout.Wall)
	_, err = l.Merge([]layout.Position{pos(1, 1), pos(1, 2)}, 2)
	require.NoError(t, err)

	require.NoError(t, f.svc.Save(context.Background(), owner, rm, l.Snapshot()))

	_, reloaded, err := f.svc.Load(context.Background(), owner, 1)
	require.NoError(t, err)
	if diff := cmp.Diff(l.Snapshot(), reloaded.Snapshot()); diff != "" {
		t.Fatalf("reloaded layout differs (-saved +loaded):\n%s", diff)
	}
	assert.Len(t, f.layouts.seats[1], 4)
	assert.Equal(t, []uint64{1}, f.cache.dropped)

	select {
	case ev := <-f.events.events:
		assert.Equal(t, uint64(1), ev.RoomID)
		assert.Equal(t, 4, ev.Seats)
		assert.Equal(t, 1, ev.Groups)
		assert.Equal(t, 2, ev.GroupedSeats)
		assert.Equal(t, 1, ev.Structures)
	case <-time.After(2 * time.Second):
		t.Fatal("layout.saved was not published")
	}
}

func TestSave_RejectsExtentOverLimit(t *testing.T) {
	f := newFixture(t)
	rm := &model.Room{ID: 1, OwnerID: owner}
	l, err := layout.New(21, 5)
	require.NoError(t, err)

	err = f.svc.Save(context.Background(), owner, rm, l.Snapshot())
	assert.ErrorIs(t, err, layout.ErrOutOfBounds)
	assert.Zero(t, f.layouts.saves)
}

func TestReplaceLayout(t *testing.T) {
	f := newFixture(t)
	doc := layout.Document{
		Rows:  3,
		Cols:  4,
		Cells: map[string]layout.CellType{"1,1": layout.Seat, "1,2": layout.Seat, "2,1": layout.Wall, "2,2": layout.Wall},
		Groups: []layout.GroupDocument{
			{ID: "pair", Positions: []string{"1,1", "1,2"}, TeamSize: 2},
		},
	}

	v, err := f.svc.ReplaceLayout(context.Background(), owner, 2, doc)
	require.NoError(t, err)
	assert.Equal(t, []layout.Run{{Type: layout.Wall, Axis: layout.Horizontal, Start: pos(2, 1), End: pos(2, 2)}}, v.Runs.Horizontal)
	assert.Empty(t, v.UngroupedSeats)
	assert.Equal(t, 1, f.layouts.saves)
}

func TestReplaceLayout_RejectsCorruptDocuments(t *testing.T) {
	f := newFixture(t)
	doc := layout.Document{
		Rows:   3,
		Cols:   4,
		Cells:  map[string]layout.CellType{"1,1": layout.Seat, "1,2": layout.Pillar},
		Groups: []layout.GroupDocument{{ID: "bad", Positions: []string{"1,1", "1,2"}, TeamSize: 2}},
	}

	_, err := f.svc.ReplaceLayout(context.Background(), owner, 2, doc)
	assert.ErrorIs(t, err, layout.ErrCorruptLayout)
	assert.Zero(t, f.layouts.saves)
}

// saveSixBySix stores one pair, one trio and ten individual seats in room 1.
func saveSixBySix(t *testing.T, f *fixture) {
	t.Helper()
	rm, l, err := f.svc.Load(context.Background(), owner, 1)
	require.NoError(t, err)
	l.PaintRect(pos(1, 1), 1, 2, layout.Seat)
	l.PaintRect(pos(2, 1), 1, 3, layout.Seat)
	l.PaintRect(pos(4, 1), 1, 6, layout.Seat)
	l.PaintRect(pos(5, 1), 1, 4, layout.Seat)
	_, err = l.Merge([]layout.Position{pos(1, 1), pos(1, 2)}, 2)
	require.NoError(t, err)
	_, err = l.Merge([]layout.Position{pos(2, 1), pos(2, 2), pos(2, 3)}, 3)
	require.NoError(t, err)
	require.NoError(t, f.svc.Save(context.Background(), owner, rm, l.Snapshot()))
}

func TestOccupancy(t *testing.T) {
	f := newFixture(t)
	saveSixBySix(t, f)
	f.allocs[1] = []layout.Allocation{{TeamID: "t1", TeamName: "Pair", Positions: []layout.Position{pos(1, 1), pos(1, 2)}}}

	occ, err := f.svc.Occupancy(context.Background(), owner, 1)
	require.NoError(t, err)
	assert.Equal(t, "Main", occ.RoomName)
	assert.Equal(t, 1, occ.Teams2)
	assert.Equal(t, 0, occ.Teams3)
	assert.Equal(t, 10, occ.IndividualSeats)
	assert.Equal(t, 2, occ.TotalParticipants)
	assert.Equal(t, 1, occ.AvailableUnits3)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	saveSixBySix(t, f)

	dash, err := f.svc.Dashboard(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, dash, 2)
	assert.Equal(t, uint64(1), dash[0].RoomID)
	assert.Equal(t, 15, dash[0].Capacity)
	assert.Equal(t, uint64(2), dash[1].RoomID)
	assert.Equal(t, 10, dash[1].Capacity)
	assert.Zero(t, dash[1].TotalParticipants)
}

func TestOverlay_Highlight(t *testing.T) {
	f := newFixture(t)
	saveSixBySix(t, f)
	f.allocs[1] = []layout.Allocation{
		{TeamID: "t1", Positions: []layout.Position{pos(1, 1), pos(1, 2)}},
		{TeamID: "t2", Positions: []layout.Position{pos(4, 1), pos(4, 2), pos(4, 3)}},
	}

	v, err := f.svc.Overlay(context.Background(), owner, 1, []string{"t2"})
	require.NoError(t, err)
	assert.Equal(t, 6, v.Rows)
	require.Len(t, v.Regions, 2)
	assert.True(t, v.Regions[0].Dimmed)
	assert.False(t, v.Regions[1].Dimmed)
	assert.Equal(t, layout.Rect{MinRow: 4, MinCol: 1, MaxRow: 4, MaxCol: 3}, v.Regions[1].Bounds)
	assert.Equal(t, layout.LayerGroup, v.At(pos(2, 1)).Layer)
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)

	rm, err := f.svc.CreateRoom(context.Background(), owner, "Studio", 10, 12, -4)
	require.NoError(t, err)
	assert.NotZero(t, rm.ID)
	assert.Zero(t, rm.Capacity)
	assert.Equal(t, []uint64{owner}, f.cache.operators, "room list views are dropped")

	_, err = f.svc.CreateRoom(context.Background(), owner, "Studio", 10, 12, 0)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = f.svc.CreateRoom(context.Background(), owner, "Arena", 30, 12, 0)
	assert.ErrorIs(t, err, layout.ErrOutOfBounds)
	_, err = f.svc.CreateRoom(context.Background(), owner, "Closet", 0, 1, 0)
	assert.ErrorIs(t, err, layout.ErrOutOfBounds)
}
