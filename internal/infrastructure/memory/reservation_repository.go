package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

// ReservationRepository はプロセス内メモリの予約リポジトリ
type ReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]reservation.Reservation
	byRoom       map[string][]string
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		reservations: make(map[string]reservation.Reservation),
		byRoom:       make(map[string][]string),
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	res.Version = 1
	r.reservations[res.ID] = *res
	r.byRoom[res.RoomID] = append(r.byRoom[res.RoomID], res.ID)
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return &res, nil
}

func (r *ReservationRepository) ListByRoom(ctx context.Context, roomID string) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byRoom[roomID]
	result := make([]*reservation.Reservation, 0, len(ids))
	for _, id := range ids {
		res := r.reservations[id]
		result = append(result, &res)
	}
	return result, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	var matched []*reservation.Reservation
	for _, res := range r.reservations {
		if res.UserID != userID {
			continue
		}
		c := res
		matched = append(matched, &c)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, limit, offset), nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.reservations[res.ID]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	if current.Version != res.Version {
		return reservation.ErrOptimisticLockConflict
	}
	res.Version++
	res.UpdatedAt = time.Now()
	r.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	threshold := time.Now().Add(-olderThan)
	var result []*reservation.Reservation
	for _, res := range r.reservations {
		if res.Status != reservation.StatusPending || !res.CreatedAt.Before(threshold) {
			continue
		}
		c := res
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func paginate(items []*reservation.Reservation, limit, offset int) []*reservation.Reservation {
	if offset >= len(items) {
		return []*reservation.Reservation{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ reservation.Repository = (*ReservationRepository)(nil)
