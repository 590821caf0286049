package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
)

func newWorkspaces(t *testing.T) (*fixture, *Workspaces) {
	t.Helper()
	f := newFixture(t)
	return f, NewWorkspaces(f.svc, nil, zap.NewNop())
}

func TestWorkspaces_RequireRoom(t *testing.T) {
	_, w := newWorkspaces(t)

	_, err := w.View(owner)
	assert.ErrorIs(t, err, ErrNoRoomSelected)
	_, err = w.SetCell(owner, pos(1, 1), layout.Seat)
	assert.ErrorIs(t, err, ErrNoRoomSelected)
	_, err = w.Save(context.Background(), owner)
	assert.ErrorIs(t, err, ErrNoRoomSelected)
}

func TestWorkspaces_DrawMergeSaveReload(t *testing.T) {
	f, w := newWorkspaces(t)
	ctx := context.Background()

	v, err := w.Select(ctx, owner, 1)
	require.NoError(t, err)
	assert.False(t, v.Dirty)
	assert.Equal(t, "idle", v.Stroke)

	v, err = w.BeginStroke(owner, layout.PaintTool(layout.Seat), pos(1, 1))
	require.NoError(t, err)
	assert.Equal(t, "painting:seat", v.Stroke)
	for c := 2; c <= 4; c++ {
		_, err = w.MoveStroke(owner, pos(1, c))
		require.NoError(t, err)
	}
	v, err = w.EndStroke(owner)
	require.NoError(t, err)
	assert.True(t, v.Dirty)
	assert.Len(t, v.UngroupedSeats, 4)

	id, v, err := w.Merge(owner, []layout.Position{pos(1, 3), pos(1, 4)}, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, v.Layout.Groups, 1)

	v, err = w.Save(ctx, owner)
	require.NoError(t, err)
	assert.False(t, v.Dirty)
	assert.Equal(t, 1, f.layouts.saves)

	other := NewWorkspaces(f.svc, nil, zap.NewNop())
	v, err = other.Select(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, []layout.Position{pos(1, 1), pos(1, 2)}, v.UngroupedSeats)
	require.Len(t, v.Layout.Groups, 1)
	assert.Equal(t, id, v.Layout.Groups[0].ID)
}

func TestWorkspaces_EraseDissolvesGroup(t *testing.T) {
	_, w := newWorkspaces(t)
	_, err := w.Select(context.Background(), owner, 2)
	require.NoError(t, err)
	_, err = w.AddSection(owner, SectionRequest{TopLeft: pos(1, 1), Height: 1, Width: 3, Type: layout.Seat})
	require.NoError(t, err)
	_, _, err = w.Merge(owner, []layout.Position{pos(1, 1), pos(1, 2), pos(1, 3)}, 3)
	require.NoError(t, err)

	v, err := w.ClearCell(owner, pos(1, 2))
	require.NoError(t, err)
	assert.Empty(t, v.Layout.Groups)
	assert.Equal(t, []layout.Position{pos(1, 1), pos(1, 3)}, v.UngroupedSeats)
}

func TestWorkspaces_MergeErrors(t *testing.T) {
	_, w := newWorkspaces(t)
	_, err := w.Select(context.Background(), owner, 2)
	require.NoError(t, err)
	_, err = w.SetCell(owner, pos(1, 1), layout.Seat)
	require.NoError(t, err)
	_, err = w.SetCell(owner, pos(1, 2), layout.Pillar)
	require.NoError(t, err)

	_, _, err = w.Merge(owner, []layout.Position{pos(1, 1), pos(1, 2)}, 2)
	assert.ErrorIs(t, err, layout.ErrNotAllSeats)
	_, _, err = w.Merge(owner, []layout.Position{pos(1, 1)}, 1)
	assert.ErrorIs(t, err, layout.ErrInvalidGroupSize)
	_, err = w.Dissolve(owner, "nope")
	assert.ErrorIs(t, err, layout.ErrGroupNotFound)
	_, err = w.SetCell(owner, pos(1, 1), layout.CellType("sofa"))
	assert.ErrorIs(t, err, ErrInvalidCellType)
}

func TestWorkspaces_SaveInProgressBlocksEdits(t *testing.T) {
	f, w := newWorkspaces(t)
	ctx := context.Background()
	_, err := w.Select(ctx, owner, 1)
	require.NoError(t, err)
	_, err = w.SetCell(owner, pos(1, 1), layout.Seat)
	require.NoError(t, err)

	started, release := make(chan struct{}), make(chan struct{})
	f.layouts.onSave = func() {
		close(started)
		<-release
	}
	done := make(chan error, 1)
	go func() {
		_, err := w.Save(ctx, owner)
		done <- err
	}()
	<-started

	_, err = w.SetCell(owner, pos(1, 2), layout.Seat)
	assert.ErrorIs(t, err, ErrSaveInProgress)
	_, err = w.Save(ctx, owner)
	assert.ErrorIs(t, err, ErrSaveInProgress)
	_, err = w.Select(ctx, owner, 2)
	assert.ErrorIs(t, err, ErrSaveInProgress)
	v, err := w.View(owner)
	require.NoError(t, err)
	assert.True(t, v.Saving)

	close(release)
	require.NoError(t, <-done)
	f.layouts.onSave = nil

	_, err = w.SetCell(owner, pos(1, 2), layout.Seat)
	assert.NoError(t, err)
}

func TestWorkspaces_FailedSaveKeepsEdits(t *testing.T) {
	f, w := newWorkspaces(t)
	ctx := context.Background()
	_, err := w.Select(ctx, owner, 1)
	require.NoError(t, err)
	_, err = w.SetCell(owner, pos(2, 2), layout.Entrance)
	require.NoError(t, err)
	f.layouts.saveErr = errors.New("connection reset")

	_, err = w.Save(ctx, owner)
	require.EqualError(t, err, "connection reset")

	v, err := w.View(owner)
	require.NoError(t, err)
	assert.True(t, v.Dirty)
	assert.False(t, v.Saving)
	assert.Equal(t, layout.Entrance, v.Layout.Cells["2,2"])
	assert.Empty(t, f.layouts.docs)
}

func TestWorkspaces_SelectDiscardsUnsavedEdits(t *testing.T) {
	_, w := newWorkspaces(t)
	ctx := context.Background()
	_, err := w.Select(ctx, owner, 1)
	require.NoError(t, err)
	_, err = w.SetCell(owner, pos(1, 1), layout.Wall)
	require.NoError(t, err)

	v, err := w.Select(ctx, owner, 2)
	require.NoError(t, err)
	assert.Equal(t, "Annex", v.RoomName)

	v, err = w.Select(ctx, owner, 1)
	require.NoError(t, err)
	assert.Empty(t, v.Layout.Cells)
	assert.False(t, v.Dirty)
}

func TestWorkspaces_SectionsAndResize(t *testing.T) {
	f, w := newWorkspaces(t)
	ctx := context.Background()
	_, err := w.Select(ctx, owner, 2)
	require.NoError(t, err)

	v, err := w.AddSection(owner, SectionRequest{Preset: "seat-row", TopLeft: pos(2, 1)})
	require.NoError(t, err)
	assert.Len(t, v.UngroupedSeats, 4, "clipped to the room width")

	_, err = w.AddSection(owner, SectionRequest{Preset: "balcony"})
	assert.ErrorIs(t, err, ErrUnknownPreset)

	_, err = w.Resize(owner, 21, 4)
	assert.ErrorIs(t, err, layout.ErrOutOfBounds)

	v, err = w.Resize(owner, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Layout.Rows)
	assert.Len(t, v.UngroupedSeats, 2)

	_, err = w.Save(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, f.layouts.docs[2].Cols)
}
