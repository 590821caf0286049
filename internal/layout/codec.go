package layout

import "fmt"

// Document is the persisted form of a layout.  Cells are keyed by
// "row,col".  A document read from older storage may carry only Seats,
// one record per physical seat, and no Cells.
type Document struct {
	Rows   int                 `json:"rows"`
	Cols   int                 `json:"cols"`
	Cells  map[string]CellType `json:"cells"`
	Groups []GroupDocument     `json:"groups"`
	Seats  []SeatRecord        `json:"seats,omitempty"`
}

// GroupDocument is the persisted form of a SeatGroup.
type GroupDocument struct {
	ID        string   `json:"id"`
	Positions []string `json:"positions"`
	TeamSize  int      `json:"team_size"`
}

// SeatRecord is the row-per-seat representation used by older storage and
// by consumers that list seats individually.
type SeatRecord struct {
	RowNumber          int     `json:"row_number"`
	ColumnNumber       int     `json:"column_number"`
	SeatGroupID        *string `json:"seat_group_id"`
	TeamSizePreference *int    `json:"team_size_preference"`
}

// Position returns the grid position of the record.
func (r SeatRecord) Position() Position {
	return Position{Row: r.RowNumber, Col: r.ColumnNumber}
}

// Serialize converts a snapshot into its document form.
func Serialize(s Snapshot) Document {
	doc := Document{
		Rows:   s.Rows,
		Cols:   s.Cols,
		Cells:  make(map[string]CellType, len(s.Cells)),
		Groups: make([]GroupDocument, 0, len(s.Groups)),
	}
	for p, t := range s.Cells {
		doc.Cells[p.Key()] = t
	}
	for _, g := range s.Groups {
		gd := GroupDocument{ID: g.ID, TeamSize: g.TeamSize, Positions: make([]string, len(g.Positions))}
		for i, p := range g.Positions {
			gd.Positions[i] = p.Key()
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return doc
}

// UngroupedSeats lists the individual seats of s in row-major order.
func UngroupedSeats(s Snapshot) []Position {
	grouped := s.groupIndex()
	out := []Position{}
	for _, p := range s.Seats() {
		if _, ok := grouped[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// SeatRecords flattens s into one record per seat, row-major.  Grouped
// seats carry their group id and team size.
func SeatRecords(s Snapshot) []SeatRecord {
	grouped := s.groupIndex()
	seats := s.Seats()
	out := make([]SeatRecord, 0, len(seats))
	for _, p := range seats {
		rec := SeatRecord{RowNumber: p.Row, ColumnNumber: p.Col}
		if i, ok := grouped[p]; ok {
			id, size := s.Groups[i].ID, s.Groups[i].TeamSize
			rec.SeatGroupID, rec.TeamSizePreference = &id, &size
		}
		out = append(out, rec)
	}
	return out
}

// Deserialize rebuilds a Layout from a document.  When the document has no
// cell map the layout is reconstructed from its seat records.  Any broken
// reference yields an error wrapping ErrCorruptLayout.
func Deserialize(doc Document) (*Layout, error) {
	if doc.Rows < 1 || doc.Cols < 1 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrCorruptLayout, doc.Rows, doc.Cols)
	}
	if doc.Cells == nil {
		if len(doc.Groups) > 0 {
			return nil, fmt.Errorf("%w: %d groups without a cell map", ErrCorruptLayout, len(doc.Groups))
		}
		return fromSeatRecords(doc.Rows, doc.Cols, doc.Seats)
	}
	s := Snapshot{Rows: doc.Rows, Cols: doc.Cols, Cells: make(map[Position]CellType, len(doc.Cells))}
	for key, t := range doc.Cells {
		p, err := ParsePosition(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptLayout, err)
		}
		if !s.InBounds(p) {
			return nil, fmt.Errorf("%w: cell %s outside %dx%d", ErrCorruptLayout, p, doc.Rows, doc.Cols)
		}
		if !t.Valid() {
			return nil, fmt.Errorf("%w: cell %s has unknown type %q", ErrCorruptLayout, p, t)
		}
		s.Cells[p] = t
	}
	for _, gd := range doc.Groups {
		g := SeatGroup{ID: gd.ID, TeamSize: gd.TeamSize, Positions: make([]Position, 0, len(gd.Positions))}
		for _, key := range gd.Positions {
			p, err := ParsePosition(key)
			if err != nil {
				return nil, fmt.Errorf("%w: group %s: %v", ErrCorruptLayout, gd.ID, err)
			}
			g.Positions = append(g.Positions, p)
		}
		s.Groups = append(s.Groups, g)
	}
	return FromSnapshot(s)
}

// fromSeatRecords infers seat cells from per-seat rows and groups from
// shared group ids, in order of first appearance.
func fromSeatRecords(rows, cols int, seats []SeatRecord) (*Layout, error) {
	l, err := New(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLayout, err)
	}
	var order []string
	groups := make(map[string]*SeatGroup)
	for _, rec := range seats {
		p := rec.Position()
		if !l.InBounds(p) {
			return nil, fmt.Errorf("%w: seat %s outside %dx%d", ErrCorruptLayout, p, rows, cols)
		}
		l.cells[p] = Seat
		if rec.SeatGroupID == nil || *rec.SeatGroupID == "" {
			continue
		}
		id := *rec.SeatGroupID
		g, ok := groups[id]
		if !ok {
			g = &SeatGroup{ID: id}
			groups[id] = g
			order = append(order, id)
		}
		g.Positions = append(g.Positions, p)
		if g.TeamSize == 0 && rec.TeamSizePreference != nil {
			g.TeamSize = *rec.TeamSizePreference
		}
	}
	for _, id := range order {
		g := groups[id]
		if g.TeamSize == 0 {
			g.TeamSize = len(g.Positions)
		}
		if err := l.adopt(*g); err != nil {
			return nil, err
		}
	}
	return l, nil
}
