package room

import (
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
)

// Room は予約対象の客室エンティティを表す
type Room struct {
	ID            string
	Number        string
	Type          string
	PricePerNight money.Money
	Capacity      int
	// IsAvailable は表示用のフラグ。空室判定には使わない
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRoom は新しい客室を作成する
func NewRoom(number, roomType string, pricePerNight money.Money, capacity int) *Room {
	now := time.Now()
	return &Room{
		Number:        number,
		Type:          roomType,
		PricePerNight: pricePerNight,
		Capacity:      capacity,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanAccommodate は指定人数を収容できるかを返す
func (r *Room) CanAccommodate(guests int) bool {
	return guests >= 1 && guests <= r.Capacity
}

// Validate は客室の検証を行う
func (r *Room) Validate() error {
	if r.Number == "" {
		return ErrRoomNumberRequired
	}
	if r.Type == "" {
		return ErrRoomTypeRequired
	}
	if r.PricePerNight < 0 {
		return ErrInvalidPrice
	}
	if r.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Filter は客室一覧の絞り込み条件
type Filter struct {
	Type        string
	MinCapacity int
	// MaxPrice が0の場合は上限なし
	MaxPrice money.Money
}

// Matches は客室が条件に一致するかを返す
func (f Filter) Matches(r *Room) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.MinCapacity > 0 && r.Capacity < f.MinCapacity {
		return false
	}
	if f.MaxPrice > 0 && r.PricePerNight > f.MaxPrice {
		return false
	}
	return true
}
