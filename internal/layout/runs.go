package layout

// Axis is the direction of a run.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Run is a straight segment of same-typed structural cells, inclusive of
// both endpoints.
type Run struct {
	Type  CellType `json:"type"`
	Axis  Axis     `json:"axis"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Len returns the number of cells covered by the run.
func (r Run) Len() int {
	if r.Axis == Horizontal {
		return r.End.Col - r.Start.Col + 1
	}
	return r.End.Row - r.Start.Row + 1
}

// Runs holds the horizontal and vertical runs of a snapshot in scan order.
type Runs struct {
	Horizontal []Run `json:"horizontal"`
	Vertical   []Run `json:"vertical"`
}

// ComputeRuns derives wall and pillar runs from s.  Horizontal runs are
// found row-major and vertical runs column-major, so the same cell map
// always yields the same lists.
//
// Wall runs are split at interior corners: a wall cell with a wall
// neighbour across the scan axis ends the current run and starts the
// next, so both strokes share the junction cell.  Pillar runs never split.
// Vertical runs are at least two cells long; a lone horizontal cell is
// reported only when no vertical run covers it.
func ComputeRuns(s Snapshot) Runs {
	out := Runs{Horizontal: []Run{}, Vertical: []Run{}}
	for r := 1; r <= s.Rows; r++ {
		for c := 1; c <= s.Cols; {
			t, ok := s.Cells[Position{Row: r, Col: c}]
			if !ok || !t.Structural() {
				c++
				continue
			}
			end := c
			for end < s.Cols && s.Cells[Position{Row: r, Col: end + 1}] == t {
				end++
			}
			out.Horizontal = append(out.Horizontal, segmentRuns(s, t, Horizontal, r, c, end)...)
			c = end + 1
		}
	}
	for c := 1; c <= s.Cols; c++ {
		for r := 1; r <= s.Rows; {
			t, ok := s.Cells[Position{Row: r, Col: c}]
			if !ok || !t.Structural() {
				r++
				continue
			}
			end := r
			for end < s.Rows && s.Cells[Position{Row: end + 1, Col: c}] == t {
				end++
			}
			out.Vertical = append(out.Vertical, segmentRuns(s, t, Vertical, c, r, end)...)
			r = end + 1
		}
	}
	return out
}

// segmentRuns splits one maximal segment [from, to] on line fixed.
func segmentRuns(s Snapshot, t CellType, axis Axis, fixed, from, to int) []Run {
	at := func(i int) Position {
		if axis == Horizontal {
			return Position{Row: fixed, Col: i}
		}
		return Position{Row: i, Col: fixed}
	}
	if from == to {
		if axis == Vertical || crossNeighbour(s, at(from), axis, t) {
			return nil
		}
		return []Run{{Type: t, Axis: axis, Start: at(from), End: at(to)}}
	}
	var runs []Run
	start := from
	if t == Wall {
		for i := from + 1; i < to; i++ {
			if crossNeighbour(s, at(i), axis, Wall) {
				runs = append(runs, Run{Type: t, Axis: axis, Start: at(start), End: at(i)})
				start = i
			}
		}
	}
	return append(runs, Run{Type: t, Axis: axis, Start: at(start), End: at(to)})
}

// crossNeighbour reports whether p has a neighbour of type t on either
// side across axis.
func crossNeighbour(s Snapshot, p Position, axis Axis, t CellType) bool {
	var a, b Position
	if axis == Horizontal {
		a, b = Position{Row: p.Row - 1, Col: p.Col}, Position{Row: p.Row + 1, Col: p.Col}
	} else {
		a, b = Position{Row: p.Row, Col: p.Col - 1}, Position{Row: p.Row, Col: p.Col + 1}
	}
	return s.Cells[a] == t || s.Cells[b] == t
}
