package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/config"
	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/model"
	"github.com/iliyamo/venue-seat-layout/internal/queue"
	"github.com/iliyamo/venue-seat-layout/internal/repository"
)

type fakeRooms struct {
	mu     sync.Mutex
	rooms  map[uint64]*model.Room
	nextID uint64
}

func newFakeRooms(rooms ...*model.Room) *fakeRooms {
	f := &fakeRooms{rooms: map[uint64]*model.Room{}, nextID: 100}
	for _, rm := range rooms {
		f.rooms[rm.ID] = rm
	}
	return f
}

func (f *fakeRooms) Create(_ context.Context, rm *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.rooms {
		if other.OwnerID == rm.OwnerID && other.Name == rm.Name {
			return repository.ErrConflict
		}
	}
	f.nextID++
	rm.ID = f.nextID
	cp := *rm
	f.rooms[rm.ID] = &cp
	return nil
}

func (f *fakeRooms) GetByIDAndOwner(_ context.Context, id, ownerID uint64) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rooms[id]
	if !ok || rm.OwnerID != ownerID {
		return nil, repository.ErrRoomNotFound
	}
	cp := *rm
	return &cp, nil
}

func (f *fakeRooms) ListByOwner(_ context.Context, ownerID uint64) ([]*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Room
	for _, rm := range f.rooms {
		if rm.OwnerID == ownerID {
			cp := *rm
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeLayouts struct {
	mu      sync.Mutex
	docs    map[uint64]layout.Document
	seats   map[uint64][]layout.SeatRecord
	saves   int
	saveErr error
	// onSave runs before a save is recorded; tests use it to observe or
	// hold a save in flight.
	onSave func()
}

func newFakeLayouts() *fakeLayouts {
	return &fakeLayouts{docs: map[uint64]layout.Document{}, seats: map[uint64][]layout.SeatRecord{}}
}

func (f *fakeLayouts) GetDocument(_ context.Context, roomID uint64) (layout.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[roomID]
	if !ok {
		return layout.Document{}, repository.ErrLayoutNotFound
	}
	return doc, nil
}

func (f *fakeLayouts) ListSeatRecords(_ context.Context, roomID uint64) ([]layout.SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seats[roomID], nil
}

func (f *fakeLayouts) Save(_ context.Context, roomID, _ uint64, doc layout.Document, seats []layout.SeatRecord) error {
	if f.onSave != nil {
		f.onSave()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.docs[roomID] = doc
	f.seats[roomID] = seats
	return nil
}

type fakeAllocs map[uint64][]layout.Allocation

func (f fakeAllocs) ListByRoom(_ context.Context, roomID uint64) ([]layout.Allocation, error) {
	return f[roomID], nil
}

type fakePublisher struct{ events chan queue.LayoutSavedEvent }

func (f *fakePublisher) PublishLayoutSaved(_ context.Context, ev queue.LayoutSavedEvent) error {
	f.events <- ev
	return nil
}

type fakeCache struct {
	mu        sync.Mutex
	dropped   []uint64
	operators []uint64
}

func (f *fakeCache) InvalidateOperator(_ context.Context, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operators = append(f.operators, ownerID)
	return nil
}

func (f *fakeCache) InvalidateRoom(_ context.Context, _, roomID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, roomID)
	return nil
}

const owner = uint64(3)

type fixture struct {
	rooms   *fakeRooms
	layouts *fakeLayouts
	allocs  fakeAllocs
	events  *fakePublisher
	cache   *fakeCache
	svc     *LayoutService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rooms: newFakeRooms(
			&model.Room{ID: 1, OwnerID: owner, Name: "Main", SeatRows: 6, SeatCols: 6},
			&model.Room{ID: 2, OwnerID: owner, Name: "Annex", SeatRows: 3, SeatCols: 4, Capacity: 10},
			&model.Room{ID: 9, OwnerID: 77, Name: "Elsewhere", SeatRows: 2, SeatCols: 2},
		),
		layouts: newFakeLayouts(),
		allocs:  fakeAllocs{},
		events:  &fakePublisher{events: make(chan queue.LayoutSavedEvent, 4)},
		cache:   &fakeCache{},
	}
	f.svc = NewLayoutService(f.rooms, f.layouts, f.allocs,
		config.GridConfig{MaxRows: layout.DefaultMaxRows, MaxCols: layout.DefaultMaxCols},
		zap.NewNop(), WithEvents(f.events), WithCache(f.cache))
	return f
}
