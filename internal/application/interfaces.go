package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

// LockManager はキー単位の排他ロック
type LockManager interface {
	Acquire(ctx context.Context, key string, timeout time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RoomCache は客室一覧のキャッシュ。キャッシュがない場合は nil でよい
type RoomCache interface {
	GetRooms(ctx context.Context, filter room.Filter) ([]*room.Room, error)
	SetRooms(ctx context.Context, filter room.Filter, rooms []*room.Room) error
	InvalidateRooms(ctx context.Context) error
}

// ReservationNotifier は予約の確定・キャンセルを通知する。失敗は通知側で処理する
type ReservationNotifier interface {
	ReservationConfirmed(ctx context.Context, res *reservation.Reservation, p *payment.Payment)
	ReservationCancelled(ctx context.Context, res *reservation.Reservation)
}

var _ ReservationNotifier = (*NotificationService)(nil)

// Clock は現在時刻を返す
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
