// Package layout models the seat layout of a single room: a sparse grid of
// typed cells, the seat groups merged on top of it, and the pure functions
// (runs, overlay, occupancy) that derive rendering and reporting data from an
// immutable snapshot of that grid.
package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference grid limits.  Rooms may be configured with other limits.
const (
	DefaultMaxRows = 20
	DefaultMaxCols = 28
)

// Position addresses a grid cell.  Rows and columns are 1-based.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Key renders the position in the "row,col" form used by layout documents.
func (p Position) Key() string {
	return strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)
}

func (p Position) String() string { return "(" + p.Key() + ")" }

// ParsePosition parses a "row,col" key.
func ParsePosition(key string) (Position, error) {
	r, c, ok := strings.Cut(key, ",")
	if !ok {
		return Position{}, fmt.Errorf("position %q: missing comma", key)
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return Position{}, fmt.Errorf("position %q: bad row: %w", key, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return Position{}, fmt.Errorf("position %q: bad column: %w", key, err)
	}
	return Position{Row: row, Col: col}, nil
}

// less orders positions row-major.
func less(a, b Position) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

// CellType is the kind of content painted on a grid cell.
type CellType string

const (
	Seat     CellType = "seat"
	Space    CellType = "space"
	Entrance CellType = "entrance"
	Wall     CellType = "wall"
	Pillar   CellType = "pillar"
	Screen   CellType = "screen"
)

// CellTypes lists every valid cell type in palette order.
var CellTypes = []CellType{Seat, Space, Entrance, Wall, Pillar, Screen}

// Valid reports whether t is one of the six known cell types.
func (t CellType) Valid() bool {
	switch t {
	case Seat, Space, Entrance, Wall, Pillar, Screen:
		return true
	}
	return false
}

// Structural reports whether cells of this type are drawn as runs.
func (t CellType) Structural() bool { return t == Wall || t == Pillar }
