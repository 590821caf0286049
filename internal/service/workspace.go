package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/config"
	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/model"
)

// Workspaces holds one editing workspace per operator.  Edits live in
// memory until the operator saves; selecting another room discards them.
type Workspaces struct {
	svc     *LayoutService
	presets map[string]config.SectionPreset
	logger  *zap.Logger

	mu    sync.Mutex
	byOps map[uint64]*workspace
}

type workspace struct {
	mu     sync.Mutex
	room   *model.Room
	layout *layout.Layout
	stroke layout.Stroke
	saving bool
	dirty  bool
}

// NewWorkspaces returns an empty workspace registry.
func NewWorkspaces(svc *LayoutService, presets map[string]config.SectionPreset, logger *zap.Logger) *Workspaces {
	if presets == nil {
		presets = config.DefaultSectionPresets()
	}
	return &Workspaces{svc: svc, presets: presets, logger: logger, byOps: make(map[uint64]*workspace)}
}

func (w *Workspaces) get(operatorID uint64) *workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.byOps[operatorID]
	if !ok {
		ws = &workspace{}
		w.byOps[operatorID] = ws
	}
	return ws
}

// WorkspaceView is the operator's current, possibly unsaved, layout.
type WorkspaceView struct {
	LayoutView
	Dirty  bool   `json:"dirty"`
	Saving bool   `json:"saving"`
	Stroke string `json:"stroke"`
}

func (ws *workspace) view() WorkspaceView {
	stroke := "idle"
	if tool, active := ws.stroke.Tool(); active {
		stroke = "painting:" + tool.String()
	}
	return WorkspaceView{
		LayoutView: newLayoutView(ws.room, ws.layout.Snapshot()),
		Dirty:      ws.dirty,
		Saving:     ws.saving,
		Stroke:     stroke,
	}
}

// Select loads a room into the operator's workspace, discarding unsaved
// edits of the previous room.
func (w *Workspaces) Select(ctx context.Context, operatorID, roomID uint64) (WorkspaceView, error) {
	ws := w.get(operatorID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.saving {
		return WorkspaceView{}, ErrSaveInProgress
	}
	rm, l, err := w.svc.Load(ctx, operatorID, roomID)
	if err != nil {
		return WorkspaceView{}, err
	}
	if ws.dirty && ws.room != nil {
		w.logger.Info("unsaved edits discarded", zap.Uint64("operator_id", operatorID), zap.Uint64("room_id", ws.room.ID))
	}
	ws.room, ws.layout, ws.stroke, ws.dirty = rm, l, layout.Stroke{}, false
	return ws.view(), nil
}

// View returns the operator's workspace.
func (w *Workspaces) View(operatorID uint64) (WorkspaceView, error) {
	ws := w.get(operatorID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.layout == nil {
		return WorkspaceView{}, ErrNoRoomSelected
	}
	return ws.view(), nil
}

// edit runs fn on a workspace that has a room and no save in flight, and
// returns the resulting view.
func (w *Workspaces) edit(operatorID uint64, fn func(ws *workspace) error) (WorkspaceView, error) {
	ws := w.get(operatorID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.layout == nil {
		return WorkspaceView{}, ErrNoRoomSelected
	}
	if ws.saving {
		return WorkspaceView{}, ErrSaveInProgress
	}
	if err := fn(ws); err != nil {
		return WorkspaceView{}, err
	}
	return ws.view(), nil
}

// BeginStroke starts a drag with tool at p.
func (w *Workspaces) BeginStroke(operatorID uint64, tool layout.Tool, p layout.Position) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		if ws.stroke.Begin(ws.layout, tool, p) {
			ws.dirty = true
		}
		return nil
	})
}

// MoveStroke extends the active drag to p.  Without an active drag it does
// nothing.
func (w *Workspaces) MoveStroke(operatorID uint64, p layout.Position) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		if ws.stroke.Move(ws.layout, p) {
			ws.dirty = true
		}
		return nil
	})
}

// EndStroke finishes the active drag.
func (w *Workspaces) EndStroke(operatorID uint64) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		ws.stroke.End()
		return nil
	})
}

// SetCell draws one cell.
func (w *Workspaces) SetCell(operatorID uint64, p layout.Position, t layout.CellType) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCellType, t)
		}
		if ws.layout.SetCell(p, t) {
			ws.dirty = true
		}
		return nil
	})
}

// ClearCell erases one cell.
func (w *Workspaces) ClearCell(operatorID uint64, p layout.Position) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		if ws.layout.ClearCell(p) {
			ws.dirty = true
		}
		return nil
	})
}

// SectionRequest adds a rectangular section either from a named preset or
// from an explicit size and type.  The preset wins when both are given.
type SectionRequest struct {
	Preset  string
	TopLeft layout.Position
	Height  int
	Width   int
	Type    layout.CellType
}

// ErrUnknownPreset is returned for a section preset that is not configured.
var ErrUnknownPreset = errors.New("unknown section preset")

// ErrInvalidCellType is returned when a cell type name is not recognised.
var ErrInvalidCellType = errors.New("invalid cell type")

// AddSection paints a section clipped to the grid.
func (w *Workspaces) AddSection(operatorID uint64, req SectionRequest) (WorkspaceView, error) {
	if req.Preset != "" {
		p, ok := w.presets[req.Preset]
		if !ok {
			return WorkspaceView{}, fmt.Errorf("%w: %q", ErrUnknownPreset, req.Preset)
		}
		req.Height, req.Width, req.Type = p.Height, p.Width, p.Type
	}
	return w.edit(operatorID, func(ws *workspace) error {
		if !req.Type.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCellType, req.Type)
		}
		if ws.layout.PaintRect(req.TopLeft, req.Height, req.Width, req.Type) > 0 {
			ws.dirty = true
		}
		return nil
	})
}

// Presets returns the configured section presets.
func (w *Workspaces) Presets() map[string]config.SectionPreset { return w.presets }

// Resize changes the workspace extent within the configured limits.
func (w *Workspaces) Resize(operatorID uint64, rows, cols int) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		if err := w.svc.CheckExtent(rows, cols); err != nil {
			return err
		}
		if rows == ws.layout.Rows() && cols == ws.layout.Cols() {
			return nil
		}
		if err := ws.layout.Resize(rows, cols); err != nil {
			return err
		}
		ws.dirty = true
		return nil
	})
}

// Merge groups seats into a unit for a team of teamSize and returns the
// new group id with the view.
func (w *Workspaces) Merge(operatorID uint64, positions []layout.Position, teamSize int) (string, WorkspaceView, error) {
	var id string
	v, err := w.edit(operatorID, func(ws *workspace) error {
		var err error
		id, err = ws.layout.Merge(positions, teamSize)
		if err == nil {
			ws.dirty = true
		}
		return err
	})
	return id, v, err
}

// Dissolve ungroups a merged unit.
func (w *Workspaces) Dissolve(operatorID uint64, groupID string) (WorkspaceView, error) {
	return w.edit(operatorID, func(ws *workspace) error {
		if err := ws.layout.Dissolve(groupID); err != nil {
			return err
		}
		ws.dirty = true
		return nil
	})
}

// Save persists the workspace.  While it runs, other edits and saves of the
// same workspace fail with ErrSaveInProgress.  A failed save leaves the
// workspace as it was, still dirty.
func (w *Workspaces) Save(ctx context.Context, operatorID uint64) (WorkspaceView, error) {
	ws := w.get(operatorID)
	ws.mu.Lock()
	if ws.layout == nil {
		ws.mu.Unlock()
		return WorkspaceView{}, ErrNoRoomSelected
	}
	if ws.saving {
		ws.mu.Unlock()
		return WorkspaceView{}, ErrSaveInProgress
	}
	ws.saving = true
	ws.stroke.End()
	rm, snap := *ws.room, ws.layout.Snapshot()
	ws.mu.Unlock()

	err := w.svc.Save(ctx, operatorID, &rm, snap)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.saving = false
	if err != nil {
		return WorkspaceView{}, err
	}
	ws.room.SeatRows, ws.room.SeatCols = snap.Rows, snap.Cols
	ws.dirty = false
	return ws.view(), nil
}
