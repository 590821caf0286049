package layout

import "fmt"

// Rect is an inclusive bounding rectangle in grid coordinates.
type Rect struct {
	MinRow int `json:"min_row"`
	MinCol int `json:"min_col"`
	MaxRow int `json:"max_row"`
	MaxCol int `json:"max_col"`
}

// Bounds returns the smallest rectangle covering ps.  ok is false for an
// empty slice.
func Bounds(ps []Position) (r Rect, ok bool) {
	if len(ps) == 0 {
		return Rect{}, false
	}
	r = Rect{MinRow: ps[0].Row, MaxRow: ps[0].Row, MinCol: ps[0].Col, MaxCol: ps[0].Col}
	for _, p := range ps[1:] {
		r.MinRow = min(r.MinRow, p.Row)
		r.MaxRow = max(r.MaxRow, p.Row)
		r.MinCol = min(r.MinCol, p.Col)
		r.MaxCol = max(r.MaxCol, p.Col)
	}
	return r, true
}

// Layer is the render priority of a cell; higher layers win.
type Layer int

const (
	LayerEmpty Layer = iota
	LayerCell
	LayerGroup
	LayerAllocation
)

var layerNames = [...]string{"empty", "cell", "group", "allocation"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// MarshalText renders the layer by name in JSON.
func (l Layer) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Region is the merged block drawn for one allocation.
type Region struct {
	TeamID    string     `json:"team_id"`
	TeamName  string     `json:"team_name"`
	Bounds    Rect       `json:"bounds"`
	Positions []Position `json:"positions"`
	Dimmed    bool       `json:"dimmed"`
}

// CellView is what the operator view draws at one position.
type CellView struct {
	Position Position `json:"position"`
	Layer    Layer    `json:"layer"`
	Type     CellType `json:"type,omitempty"`
	GroupID  string   `json:"group_id,omitempty"`
	TeamID   string   `json:"team_id,omitempty"`
	Dimmed   bool     `json:"dimmed,omitempty"`
}

// Overlay combines a layout with allocations for display.  It never
// alters either input.
type Overlay struct {
	Regions []Region   `json:"regions"`
	Cells   []CellView `json:"cells"`

	index map[Position]int
}

// At returns the view at p; positions with nothing drawn are LayerEmpty.
func (o Overlay) At(p Position) CellView {
	if i, ok := o.index[p]; ok {
		return o.Cells[i]
	}
	return CellView{Position: p, Layer: LayerEmpty}
}

// BuildOverlay resolves what each position shows: an allocation over a
// seat group over a plain cell over nothing.  When highlight is non-empty,
// allocations of teams outside it are dimmed.  Allocation positions
// outside the grid are ignored; a position claimed by two allocations
// shows the first.
func BuildOverlay(s Snapshot, allocs []Allocation, highlight []string) Overlay {
	hl := make(map[string]struct{}, len(highlight))
	for _, id := range highlight {
		if id != "" {
			hl[id] = struct{}{}
		}
	}

	views := make(map[Position]CellView, len(s.Cells))
	for p, t := range s.Cells {
		views[p] = CellView{Position: p, Layer: LayerCell, Type: t}
	}
	for _, g := range s.Groups {
		for _, p := range g.Positions {
			v := views[p]
			v.Position, v.Layer, v.GroupID = p, LayerGroup, g.ID
			views[p] = v
		}
	}

	o := Overlay{Regions: []Region{}}
	for _, a := range allocs {
		ps := make([]Position, 0, len(a.Positions))
		for _, p := range dedup(a.Positions) {
			if s.InBounds(p) {
				ps = append(ps, p)
			}
		}
		rect, ok := Bounds(ps)
		if !ok {
			continue
		}
		_, lit := hl[a.TeamID]
		dimmed := len(hl) > 0 && !lit
		o.Regions = append(o.Regions, Region{
			TeamID:    a.TeamID,
			TeamName:  a.TeamName,
			Bounds:    rect,
			Positions: ps,
			Dimmed:    dimmed,
		})
		for _, p := range ps {
			v := views[p]
			if v.Layer == LayerAllocation {
				continue
			}
			v.Position, v.Layer, v.TeamID, v.Dimmed = p, LayerAllocation, a.TeamID, dimmed
			views[p] = v
		}
	}

	o.Cells = make([]CellView, 0, len(views))
	keys := make([]Position, 0, len(views))
	for p := range views {
		keys = append(keys, p)
	}
	sortPositions(keys)
	o.index = make(map[Position]int, len(keys))
	for i, p := range keys {
		o.Cells = append(o.Cells, views[p])
		o.index[p] = i
	}
	return o
}
