package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paint(t *testing.T, rows, cols int, typ CellType, ps ...Position) *Layout {
	t.Helper()
	l := mustNew(t, rows, cols)
	for _, p := range ps {
		require.True(t, l.SetCell(p, typ), "paint %s", p)
	}
	return l
}

func hrun(typ CellType, a, b Position) Run { return Run{Type: typ, Axis: Horizontal, Start: a, End: b} }
func vrun(typ CellType, a, b Position) Run { return Run{Type: typ, Axis: Vertical, Start: a, End: b} }

func TestComputeRuns_SplitsWallAtJunction(t *testing.T) {
	l := paint(t, 5, 6, Wall, pos(2, 3), pos(2, 4), pos(2, 5), pos(1, 4))

	got := ComputeRuns(l.Snapshot())

	want := Runs{
		Horizontal: []Run{
			hrun(Wall, pos(2, 3), pos(2, 4)),
			hrun(Wall, pos(2, 4), pos(2, 5)),
		},
		Vertical: []Run{
			vrun(Wall, pos(1, 4), pos(2, 4)),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeRuns_LShapeSharesCorner(t *testing.T) {
	l := paint(t, 4, 6, Wall, pos(2, 3), pos(2, 4), pos(2, 5), pos(1, 5))

	got := ComputeRuns(l.Snapshot())

	assert.Equal(t, []Run{hrun(Wall, pos(2, 3), pos(2, 5))}, got.Horizontal)
	assert.Equal(t, []Run{vrun(Wall, pos(1, 5), pos(2, 5))}, got.Vertical)
}

func TestComputeRuns_Cross(t *testing.T) {
	l := paint(t, 3, 3, Wall, pos(1, 2), pos(2, 1), pos(2, 2), pos(2, 3), pos(3, 2))

	got := ComputeRuns(l.Snapshot())

	assert.Equal(t, []Run{
		hrun(Wall, pos(2, 1), pos(2, 2)),
		hrun(Wall, pos(2, 2), pos(2, 3)),
	}, got.Horizontal)
	assert.Equal(t, []Run{
		vrun(Wall, pos(1, 2), pos(2, 2)),
		vrun(Wall, pos(2, 2), pos(3, 2)),
	}, got.Vertical)
}

func TestComputeRuns_PillarsDoNotSplit(t *testing.T) {
	l := paint(t, 4, 5, Pillar, pos(3, 2), pos(3, 3), pos(3, 4), pos(2, 3))

	got := ComputeRuns(l.Snapshot())

	assert.Equal(t, []Run{hrun(Pillar, pos(3, 2), pos(3, 4))}, got.Horizontal)
	assert.Equal(t, []Run{vrun(Pillar, pos(2, 3), pos(3, 3))}, got.Vertical)
}

func TestComputeRuns_TypeChangeEndsRun(t *testing.T) {
	l := paint(t, 2, 5, Wall, pos(1, 1), pos(1, 2))
	l.SetCell(pos(1, 3), Pillar)
	l.SetCell(pos(1, 4), Pillar)
	l.SetCell(pos(1, 5), Seat)

	got := ComputeRuns(l.Snapshot())

	assert.Equal(t, []Run{
		hrun(Wall, pos(1, 1), pos(1, 2)),
		hrun(Pillar, pos(1, 3), pos(1, 4)),
	}, got.Horizontal)
	assert.Empty(t, got.Vertical)
}

func TestComputeRuns_LoneCell(t *testing.T) {
	l := paint(t, 5, 5, Wall, pos(5, 5))

	got := ComputeRuns(l.Snapshot())

	require.Len(t, got.Horizontal, 1)
	assert.Equal(t, 1, got.Horizontal[0].Len())
	assert.Empty(t, got.Vertical)
}

func TestComputeRuns_IgnoresNonStructuralCells(t *testing.T) {
	l := mustNew(t, 3, 3)
	l.PaintRect(pos(1, 1), 3, 3, Seat)
	l.SetCell(pos(2, 2), Screen)

	got := ComputeRuns(l.Snapshot())

	assert.Empty(t, got.Horizontal)
	assert.Empty(t, got.Vertical)
}

// roomWithWalls draws a bordered room with an internal partition and a
// pillar block.
func roomWithWalls(t *testing.T) *Layout {
	t.Helper()
	l := mustNew(t, 10, 12)
	l.PaintRect(pos(1, 1), 1, 12, Wall)
	l.PaintRect(pos(10, 1), 1, 12, Wall)
	l.PaintRect(pos(1, 1), 10, 1, Wall)
	l.PaintRect(pos(1, 12), 10, 1, Wall)
	l.PaintRect(pos(1, 6), 5, 1, Wall)
	l.PaintRect(pos(7, 8), 2, 2, Pillar)
	l.SetCell(pos(10, 6), Entrance)
	l.PaintRect(pos(3, 2), 2, 4, Seat)
	return l
}

func TestComputeRuns_Deterministic(t *testing.T) {
	l := roomWithWalls(t)
	first := ComputeRuns(l.Snapshot())

	for i := 0; i < 20; i++ {
		again := ComputeRuns(l.Clone().Snapshot())
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestComputeRuns_CoversEveryStructuralCell(t *testing.T) {
	l := roomWithWalls(t)
	s := l.Snapshot()
	runs := ComputeRuns(s)

	covered := make(map[Position]bool)
	mark := func(r Run) {
		for i := 0; i < r.Len(); i++ {
			p := r.Start
			if r.Axis == Horizontal {
				p.Col += i
			} else {
				p.Row += i
			}
			assert.Equal(t, r.Type, s.Cells[p], "run %+v crosses %s", r, p)
			covered[p] = true
		}
	}
	for _, r := range runs.Horizontal {
		mark(r)
	}
	for _, r := range runs.Vertical {
		assert.GreaterOrEqual(t, r.Len(), 2)
		mark(r)
	}
	for p, typ := range s.Cells {
		if typ.Structural() {
			assert.True(t, covered[p], "%s %s not covered", typ, p)
		}
	}
}
