package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

// RoomRepository はプロセス内メモリの客室リポジトリ
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]room.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{rooms: make(map[string]room.Room)}
}

func (r *RoomRepository) Create(ctx context.Context, rm *room.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rooms {
		if existing.Number == rm.Number {
			return room.ErrRoomNumberConflict
		}
	}
	if rm.ID == "" {
		rm.ID = uuid.New().String()
	}
	r.rooms[rm.ID] = *rm
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	return &rm, nil
}

func (r *RoomRepository) List(ctx context.Context, filter room.Filter) ([]*room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		if !filter.Matches(&rm) {
			continue
		}
		c := rm
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (r *RoomRepository) Update(ctx context.Context, rm *room.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[rm.ID]; !ok {
		return room.ErrRoomNotFound
	}
	for id, existing := range r.rooms {
		if id != rm.ID && existing.Number == rm.Number {
			return room.ErrRoomNumberConflict
		}
	}
	rm.UpdatedAt = time.Now()
	r.rooms[rm.ID] = *rm
	return nil
}

var _ room.Repository = (*RoomRepository)(nil)
