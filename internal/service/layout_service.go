// Package service coordinates layout persistence, allocation lookups and
// the per-operator editing workspaces on top of the pure layout engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/config"
	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/model"
	"github.com/iliyamo/venue-seat-layout/internal/queue"
	"github.com/iliyamo/venue-seat-layout/internal/repository"
)

// ErrSaveInProgress is returned when a workspace is asked to change or save
// while its previous save has not finished.
var ErrSaveInProgress = errors.New("save in progress")

// ErrNoRoomSelected is returned by workspace operations before a room is
// selected.
var ErrNoRoomSelected = errors.New("no room selected")

// RoomStore reads and creates rooms.
type RoomStore interface {
	Create(ctx context.Context, rm *model.Room) error
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Room, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Room, error)
}

// LayoutStore persists layout documents.
type LayoutStore interface {
	GetDocument(ctx context.Context, roomID uint64) (layout.Document, error)
	ListSeatRecords(ctx context.Context, roomID uint64) ([]layout.SeatRecord, error)
	Save(ctx context.Context, roomID, operatorID uint64, doc layout.Document, seats []layout.SeatRecord) error
}

// AllocationSource supplies the team allocations of a room.
type AllocationSource interface {
	ListByRoom(ctx context.Context, roomID uint64) ([]layout.Allocation, error)
}

// EventPublisher announces saved layouts.
type EventPublisher interface {
	PublishLayoutSaved(ctx context.Context, ev queue.LayoutSavedEvent) error
}

// CacheInvalidator drops cached views of a room and its owner's
// cross-room views.
type CacheInvalidator interface {
	InvalidateRoom(ctx context.Context, ownerID, roomID uint64) error
	InvalidateOperator(ctx context.Context, ownerID uint64) error
}

// LayoutService loads, validates and saves room layouts and derives the
// read-only views (runs, overlay, occupancy) from them.
type LayoutService struct {
	rooms   RoomStore
	layouts LayoutStore
	allocs  AllocationSource
	events  EventPublisher
	cache   CacheInvalidator
	limits  config.GridConfig
	logger  *zap.Logger
	now     func() time.Time

	publishTimeout time.Duration
}

// Option customises a LayoutService.
type Option func(*LayoutService)

// WithEvents publishes a layout.saved event after every successful save.
func WithEvents(p EventPublisher) Option { return func(s *LayoutService) { s.events = p } }

// WithCache invalidates cached room views after every successful save.
func WithCache(c CacheInvalidator) Option { return func(s *LayoutService) { s.cache = c } }

// NewLayoutService wires the service to its stores.
func NewLayoutService(rooms RoomStore, layouts LayoutStore, allocs AllocationSource, limits config.GridConfig, logger *zap.Logger, opts ...Option) *LayoutService {
	s := &LayoutService{
		rooms:          rooms,
		layouts:        layouts,
		allocs:         allocs,
		limits:         limits,
		logger:         logger,
		now:            time.Now,
		publishTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the configured grid limits.
func (s *LayoutService) Limits() config.GridConfig { return s.limits }

// CheckExtent rejects extents that are not positive or exceed the limits.
func (s *LayoutService) CheckExtent(rows, cols int) error {
	if rows < 1 || cols < 1 || rows > s.limits.MaxRows || cols > s.limits.MaxCols {
		return fmt.Errorf("%w: %dx%d outside 1x1..%dx%d", layout.ErrOutOfBounds, rows, cols, s.limits.MaxRows, s.limits.MaxCols)
	}
	return nil
}

// CreateRoom registers a room for an owner.  Its layout starts empty.
func (s *LayoutService) CreateRoom(ctx context.Context, ownerID uint64, name string, rows, cols, capacity int) (*model.Room, error) {
	if err := s.CheckExtent(rows, cols); err != nil {
		return nil, err
	}
	if capacity < 0 {
		capacity = 0
	}
	rm := &model.Room{OwnerID: ownerID, Name: name, SeatRows: rows, SeatCols: cols, Capacity: capacity}
	if err := s.rooms.Create(ctx, rm); err != nil {
		return nil, err
	}
	s.logger.Info("room created", zap.Uint64("room_id", rm.ID), zap.Uint64("operator_id", ownerID))
	if s.cache != nil {
		if err := s.cache.InvalidateOperator(ctx, ownerID); err != nil {
			s.logger.Warn("cache invalidation failed", zap.Uint64("operator_id", ownerID), zap.Error(err))
		}
	}
	return rm, nil
}

// ListRooms returns the owner's rooms.
func (s *LayoutService) ListRooms(ctx context.Context, ownerID uint64) ([]*model.Room, error) {
	return s.rooms.ListByOwner(ctx, ownerID)
}

// Load returns a room and its persisted layout.  A room saved only as seat
// rows is rebuilt from them, and a room never saved gets an empty layout
// of its declared extent.
func (s *LayoutService) Load(ctx context.Context, ownerID, roomID uint64) (*model.Room, *layout.Layout, error) {
	rm, err := s.rooms.GetByIDAndOwner(ctx, roomID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	l, err := s.loadLayout(ctx, rm)
	if err != nil {
		return nil, nil, err
	}
	return rm, l, nil
}

func (s *LayoutService) loadLayout(ctx context.Context, rm *model.Room) (*layout.Layout, error) {
	doc, err := s.layouts.GetDocument(ctx, rm.ID)
	switch {
	case err == nil:
		l, err := layout.Deserialize(doc)
		if err != nil {
			s.logger.Error("stored layout rejected", zap.Uint64("room_id", rm.ID), zap.Error(err))
			return nil, err
		}
		return l, nil
	case !errors.Is(err, repository.ErrLayoutNotFound):
		return nil, err
	}

	seats, err := s.layouts.ListSeatRecords(ctx, rm.ID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return layout.New(rm.SeatRows, rm.SeatCols)
	}
	s.logger.Info("rebuilding layout from seat rows", zap.Uint64("room_id", rm.ID), zap.Int("seats", len(seats)))
	return layout.Deserialize(layout.Document{Rows: rm.SeatRows, Cols: rm.SeatCols, Seats: seats})
}

// Save writes snap as the room's layout.  Nothing is retried; on failure
// the stored layout is unchanged.  Cache invalidation and the saved event
// follow a successful write and never fail the save.
func (s *LayoutService) Save(ctx context.Context, operatorID uint64, rm *model.Room, snap layout.Snapshot) error {
	if err := s.CheckExtent(snap.Rows, snap.Cols); err != nil {
		return err
	}
	if err := s.layouts.Save(ctx, rm.ID, operatorID, layout.Serialize(snap), layout.SeatRecords(snap)); err != nil {
		s.logger.Error("layout save failed", zap.Uint64("room_id", rm.ID), zap.Uint64("operator_id", operatorID), zap.Error(err))
		return err
	}
	s.logger.Info("layout saved",
		zap.Uint64("room_id", rm.ID),
		zap.Uint64("operator_id", operatorID),
		zap.Int("cells", len(snap.Cells)),
		zap.Int("groups", len(snap.Groups)),
	)
	if s.cache != nil {
		if err := s.cache.InvalidateRoom(ctx, rm.OwnerID, rm.ID); err != nil {
			s.logger.Warn("cache invalidation failed", zap.Uint64("room_id", rm.ID), zap.Error(err))
		}
	}
	if s.events != nil {
		go s.publishSaved(savedEvent(rm, operatorID, snap, s.now()))
	}
	return nil
}

func (s *LayoutService) publishSaved(ev queue.LayoutSavedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()
	if err := s.events.PublishLayoutSaved(ctx, ev); err != nil {
		s.logger.Warn("layout.saved not published", zap.Uint64("room_id", ev.RoomID), zap.Error(err))
	}
}

func savedEvent(rm *model.Room, operatorID uint64, snap layout.Snapshot, at time.Time) queue.LayoutSavedEvent {
	runs := layout.ComputeRuns(snap)
	ev := queue.LayoutSavedEvent{
		RoomID:     rm.ID,
		RoomName:   rm.Name,
		OperatorID: operatorID,
		Rows:       snap.Rows,
		Cols:       snap.Cols,
		Seats:      len(snap.Seats()),
		Groups:     len(snap.Groups),
		Structures: len(runs.Horizontal) + len(runs.Vertical),
		SavedAt:    at.UTC(),
	}
	for _, g := range snap.Groups {
		ev.GroupedSeats += len(g.Positions)
	}
	return ev
}

// ReplaceLayout validates a client-built document and saves it as the
// room's layout.  Documents that break the layout invariants are rejected
// with layout.ErrCorruptLayout.
func (s *LayoutService) ReplaceLayout(ctx context.Context, ownerID, roomID uint64, doc layout.Document) (LayoutView, error) {
	rm, err := s.rooms.GetByIDAndOwner(ctx, roomID, ownerID)
	if err != nil {
		return LayoutView{}, err
	}
	l, err := layout.Deserialize(doc)
	if err != nil {
		return LayoutView{}, err
	}
	snap := l.Snapshot()
	if err := s.Save(ctx, ownerID, rm, snap); err != nil {
		return LayoutView{}, err
	}
	rm.SeatRows, rm.SeatCols = snap.Rows, snap.Cols
	return newLayoutView(rm, snap), nil
}

// LayoutView is a room's layout together with the strokes a renderer draws.
type LayoutView struct {
	RoomID         uint64            `json:"room_id"`
	RoomName       string            `json:"room_name"`
	Layout         layout.Document   `json:"layout"`
	Runs           layout.Runs       `json:"runs"`
	UngroupedSeats []layout.Position `json:"ungrouped_seats"`
}

func newLayoutView(rm *model.Room, snap layout.Snapshot) LayoutView {
	ungrouped := layout.UngroupedSeats(snap)
	if ungrouped == nil {
		ungrouped = []layout.Position{}
	}
	return LayoutView{
		RoomID:         rm.ID,
		RoomName:       rm.Name,
		Layout:         layout.Serialize(snap),
		Runs:           layout.ComputeRuns(snap),
		UngroupedSeats: ungrouped,
	}
}

// View returns the persisted layout of a room.
func (s *LayoutService) View(ctx context.Context, ownerID, roomID uint64) (LayoutView, error) {
	rm, l, err := s.Load(ctx, ownerID, roomID)
	if err != nil {
		return LayoutView{}, err
	}
	return newLayoutView(rm, l.Snapshot()), nil
}

// RoomOccupancy is the occupancy summary of one room.
type RoomOccupancy struct {
	RoomID   uint64 `json:"room_id"`
	RoomName string `json:"room_name"`
	layout.Summary
}

// Occupancy summarises who sits in a room and what is still free.
func (s *LayoutService) Occupancy(ctx context.Context, ownerID, roomID uint64) (RoomOccupancy, error) {
	rm, l, err := s.Load(ctx, ownerID, roomID)
	if err != nil {
		return RoomOccupancy{}, err
	}
	return s.occupancy(ctx, rm, l)
}

func (s *LayoutService) occupancy(ctx context.Context, rm *model.Room, l *layout.Layout) (RoomOccupancy, error) {
	allocs, err := s.allocs.ListByRoom(ctx, rm.ID)
	if err != nil {
		return RoomOccupancy{}, err
	}
	sum := layout.Summarize(l.Snapshot(), allocs, rm.Capacity)
	if len(sum.Anomalies) > 0 {
		s.logger.Warn("allocation anomalies", zap.Uint64("room_id", rm.ID), zap.Strings("anomalies", sum.Anomalies))
	}
	return RoomOccupancy{RoomID: rm.ID, RoomName: rm.Name, Summary: sum}, nil
}

// Dashboard summarises every room of the owner, in room id order.
func (s *LayoutService) Dashboard(ctx context.Context, ownerID uint64) ([]RoomOccupancy, error) {
	rooms, err := s.rooms.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]RoomOccupancy, 0, len(rooms))
	for _, rm := range rooms {
		l, err := s.loadLayout(ctx, rm)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", rm.ID, err)
		}
		occ, err := s.occupancy(ctx, rm, l)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", rm.ID, err)
		}
		out = append(out, occ)
	}
	return out, nil
}

// OverlayView is the allocation overlay of one room.
type OverlayView struct {
	RoomID   uint64 `json:"room_id"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	layout.Overlay
}

// Overlay combines a room's layout with its allocations.  Allocations of
// teams outside highlight are dimmed when highlight is non-empty.
func (s *LayoutService) Overlay(ctx context.Context, ownerID, roomID uint64, highlight []string) (OverlayView, error) {
	rm, l, err := s.Load(ctx, ownerID, roomID)
	if err != nil {
		return OverlayView{}, err
	}
	allocs, err := s.allocs.ListByRoom(ctx, rm.ID)
	if err != nil {
		return OverlayView{}, err
	}
	snap := l.Snapshot()
	return OverlayView{RoomID: rm.ID, Rows: snap.Rows, Cols: snap.Cols, Overlay: layout.BuildOverlay(snap, allocs, highlight)}, nil
}
