package layout

import "sort"

// Layout is the editable grid of one room.  It owns the cell map and the
// seat groups laid over it and keeps both consistent: every grouped
// position is a seat and no position is in two groups.
//
// A Layout is not safe for concurrent use; callers serialise access.
type Layout struct {
	rows   int
	cols   int
	cells  map[Position]CellType
	groups []SeatGroup          // creation order
	member map[Position]string // grouped position -> group id
}

// New returns an empty layout of the given extent.
func New(rows, cols int) (*Layout, error) {
	if rows < 1 || cols < 1 {
		return nil, ErrOutOfBounds
	}
	return &Layout{
		rows:   rows,
		cols:   cols,
		cells:  make(map[Position]CellType),
		member: make(map[Position]string),
	}, nil
}

func (l *Layout) Rows() int { return l.rows }
func (l *Layout) Cols() int { return l.cols }

// Len returns the number of non-empty cells.
func (l *Layout) Len() int { return len(l.cells) }

// InBounds reports whether p lies inside the current extent.
func (l *Layout) InBounds(p Position) bool {
	return p.Row >= 1 && p.Row <= l.rows && p.Col >= 1 && p.Col <= l.cols
}

// Cell returns the type painted at p.  ok is false for empty positions.
func (l *Layout) Cell(p Position) (t CellType, ok bool) {
	t, ok = l.cells[p]
	return t, ok
}

// SetCell paints t at p and reports whether the grid changed.  Off-grid
// positions and unknown types are ignored.  Repainting a grouped seat with
// another type dissolves its group.
func (l *Layout) SetCell(p Position, t CellType) bool {
	if !l.InBounds(p) || !t.Valid() {
		return false
	}
	if cur, ok := l.cells[p]; ok && cur == t {
		return false
	}
	if t != Seat {
		l.dissolveAt(p)
	}
	l.cells[p] = t
	return true
}

// ClearCell erases p and reports whether the grid changed.  Erasing a
// grouped seat dissolves the whole group; its other members stay seats.
func (l *Layout) ClearCell(p Position) bool {
	if _, ok := l.cells[p]; !ok {
		return false
	}
	l.dissolveAt(p)
	delete(l.cells, p)
	return true
}

// PaintRect paints a height x width block whose top-left corner is
// topLeft, clipped to the grid.  It returns the number of cells changed.
func (l *Layout) PaintRect(topLeft Position, height, width int, t CellType) int {
	if height < 1 || width < 1 {
		return 0
	}
	r0, r1 := clipSpan(topLeft.Row, height, l.rows)
	c0, c1 := clipSpan(topLeft.Col, width, l.cols)
	n := 0
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if l.SetCell(Position{Row: r, Col: c}, t) {
				n++
			}
		}
	}
	return n
}

// clipSpan clips [start, start+length) to 1..limit and returns the
// inclusive bounds.  The span is empty when from > to.  length must be
// positive.
func clipSpan(start, length, limit int) (from, to int) {
	switch {
	case start > limit:
		return 1, 0
	case start < 1:
		// a negative start cannot overflow when adding a positive length
		return 1, min(start+length-1, limit)
	case length-1 >= limit-start:
		return start, limit
	}
	return start, start + length - 1
}

// Resize changes the grid extent.  Cells outside the new extent are
// dropped and every group that loses a member is dissolved.
func (l *Layout) Resize(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return ErrOutOfBounds
	}
	l.rows, l.cols = rows, cols
	for p := range l.cells {
		if !l.InBounds(p) {
			l.dissolveAt(p)
			delete(l.cells, p)
		}
	}
	return nil
}

// Snapshot returns an immutable copy of the layout for the pure
// derivations (runs, overlay, occupancy, serialization).
func (l *Layout) Snapshot() Snapshot {
	cells := make(map[Position]CellType, len(l.cells))
	for p, t := range l.cells {
		cells[p] = t
	}
	return Snapshot{Rows: l.rows, Cols: l.cols, Cells: cells, Groups: l.Groups()}
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	c, _ := FromSnapshot(l.Snapshot())
	return c
}

// Snapshot is a point-in-time value copy of a Layout.
type Snapshot struct {
	Rows   int
	Cols   int
	Cells  map[Position]CellType
	Groups []SeatGroup
}

// InBounds reports whether p lies inside the snapshot extent.
func (s Snapshot) InBounds(p Position) bool {
	return p.Row >= 1 && p.Row <= s.Rows && p.Col >= 1 && p.Col <= s.Cols
}

// Seats returns every seat position in row-major order.
func (s Snapshot) Seats() []Position {
	out := make([]Position, 0, len(s.Cells))
	for p, t := range s.Cells {
		if t == Seat {
			out = append(out, p)
		}
	}
	sortPositions(out)
	return out
}

// groupIndex maps each grouped position to the index of its group.
func (s Snapshot) groupIndex() map[Position]int {
	idx := make(map[Position]int)
	for i, g := range s.Groups {
		for _, p := range g.Positions {
			idx[p] = i
		}
	}
	return idx
}

// FromSnapshot rebuilds an editable Layout, verifying the group invariants.
func FromSnapshot(s Snapshot) (*Layout, error) {
	l, err := New(s.Rows, s.Cols)
	if err != nil {
		return nil, err
	}
	for p, t := range s.Cells {
		if !l.InBounds(p) || !t.Valid() {
			return nil, ErrCorruptLayout
		}
		l.cells[p] = t
	}
	for _, g := range s.Groups {
		if err := l.adopt(g); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}
