package layout

import "fmt"

// Tool is what a paint stroke applies: a cell type, or erasure.
type Tool struct {
	Type  CellType
	Erase bool
}

// EraseTool clears every visited cell.
var EraseTool = Tool{Erase: true}

// PaintTool returns a tool painting cells of type t.
func PaintTool(t CellType) Tool { return Tool{Type: t} }

// ParseTool accepts a cell type name or "erase".
func ParseTool(name string) (Tool, error) {
	if name == "erase" {
		return EraseTool, nil
	}
	if t := CellType(name); t.Valid() {
		return PaintTool(t), nil
	}
	return Tool{}, fmt.Errorf("unknown tool %q", name)
}

func (t Tool) String() string {
	if t.Erase {
		return "erase"
	}
	return string(t.Type)
}

// StrokeState is the state of a drag-paint gesture.
type StrokeState int

const (
	Idle StrokeState = iota
	Painting
)

// Stroke models a drag-paint gesture as {idle, painting(tool)}.
// Pointer-down begins a stroke, every pointer-move applies the tool to the
// cell under the pointer, pointer-up ends it.  Each cell is applied at
// most once per stroke, so replayed or jittery move events are harmless.
type Stroke struct {
	state   StrokeState
	tool    Tool
	visited map[Position]struct{}
}

// State returns the current state.
func (s *Stroke) State() StrokeState { return s.state }

// Tool returns the active tool; ok is false while idle.
func (s *Stroke) Tool() (Tool, bool) {
	return s.tool, s.state == Painting
}

// Begin starts a stroke with tool at p, abandoning any stroke in progress.
// It reports whether the grid changed.
func (s *Stroke) Begin(l *Layout, tool Tool, p Position) bool {
	s.state = Painting
	s.tool = tool
	s.visited = make(map[Position]struct{})
	return s.Move(l, p)
}

// Move applies the active tool at p.  It does nothing while idle or when p
// was already visited during this stroke.
func (s *Stroke) Move(l *Layout, p Position) bool {
	if s.state != Painting {
		return false
	}
	if _, seen := s.visited[p]; seen {
		return false
	}
	s.visited[p] = struct{}{}
	if s.tool.Erase {
		return l.ClearCell(p)
	}
	return l.SetCell(p, s.tool.Type)
}

// End finishes the stroke and returns the number of distinct cells visited.
func (s *Stroke) End() int {
	n := len(s.visited)
	s.state = Idle
	s.tool = Tool{}
	s.visited = nil
	return n
}
