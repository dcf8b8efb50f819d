package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

// AvailabilityService は客室の空室状況を計算する。ロックは取らない
type AvailabilityService struct {
	roomRepo        room.Repository
	reservationRepo reservation.Repository
}

func NewAvailabilityService(roomRepo room.Repository, reservationRepo reservation.Repository) *AvailabilityService {
	return &AvailabilityService{roomRepo: roomRepo, reservationRepo: reservationRepo}
}

// AvailabilityQuery は空室検索の条件。CheckIn/CheckOut が nil の場合は日程を問わない
type AvailabilityQuery struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Filter   room.Filter
}

// Dated は日程が指定されているかを返す
func (q AvailabilityQuery) Dated() bool {
	return q.CheckIn != nil && q.CheckOut != nil
}

// RoomAvailability は客室ごとの空室状況
type RoomAvailability struct {
	Room              *room.Room
	Available         bool
	NextAvailableFrom *time.Time
}

// IsAvailable は [start, end) に客室が空いているかを返す
// 客室が存在しない場合は false を返す
func (s *AvailabilityService) IsAvailable(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("客室取得に失敗: %w", err)
	}
	blocking, err := s.blockingReservations(ctx, roomID)
	if err != nil {
		return false, err
	}
	return isFree(blocking, start, end), nil
}

// NextAvailableFrom は from 以降で最初に空く日を返す。from の時点で空いていれば nil
func (s *AvailabilityService) NextAvailableFrom(ctx context.Context, roomID string, from time.Time) (*time.Time, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.nextAvailable(ctx, roomID, from, 1)
}

// ListAvailability は条件に一致する客室の空室状況を返す
func (s *AvailabilityService) ListAvailability(ctx context.Context, q AvailabilityQuery) ([]*RoomAvailability, error) {
	rooms, err := s.roomRepo.List(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("客室一覧取得に失敗: %w", err)
	}

	result := make([]*RoomAvailability, 0, len(rooms))
	for _, rm := range rooms {
		if !q.Dated() {
			result = append(result, &RoomAvailability{Room: rm, Available: true})
			continue
		}
		blocking, err := s.blockingReservations(ctx, rm.ID)
		if err != nil {
			return nil, err
		}
		ra := &RoomAvailability{Room: rm, Available: isFree(blocking, *q.CheckIn, *q.CheckOut)}
		if !ra.Available {
			nights := reservation.CountNights(*q.CheckIn, *q.CheckOut)
			ra.NextAvailableFrom = nextFree(blocking, *q.CheckIn, nights)
		}
		result = append(result, ra)
	}
	return result, nil
}

func (s *AvailabilityService) nextAvailable(ctx context.Context, roomID string, from time.Time, nights int) (*time.Time, error) {
	blocking, err := s.blockingReservations(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return nextFree(blocking, from, nights), nil
}

// blockingReservations はキャンセル済みを除いた予約をチェックイン日順で返す
func (s *AvailabilityService) blockingReservations(ctx context.Context, roomID string) ([]*reservation.Reservation, error) {
	all, err := s.reservationRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	blocking := make([]*reservation.Reservation, 0, len(all))
	for _, r := range all {
		if r.IsActive() {
			blocking = append(blocking, r)
		}
	}
	sort.Slice(blocking, func(i, j int) bool {
		return blocking[i].CheckInDate.Before(blocking[j].CheckInDate)
	})
	return blocking, nil
}

func isFree(blocking []*reservation.Reservation, start, end time.Time) bool {
	for _, r := range blocking {
		if r.OverlapsRange(start, end) {
			return false
		}
	}
	return true
}

// nextFree は nights 泊の滞在が from 以降で最初に可能になる日を返す
// blocking はチェックイン日の昇順であること
func nextFree(blocking []*reservation.Reservation, from time.Time, nights int) *time.Time {
	if nights < 1 {
		nights = 1
	}
	stay := time.Duration(nights) * 24 * time.Hour

	cursor := from
	moved := false
	for _, r := range blocking {
		if !r.CheckInDate.Before(cursor.Add(stay)) {
			break
		}
		if r.OverlapsRange(cursor, cursor.Add(stay)) {
			cursor = r.CheckOutDate
			moved = true
		}
	}
	if !moved {
		return nil
	}
	return &cursor
}
