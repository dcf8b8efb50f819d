package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

type RoomService struct {
	roomRepo room.Repository
	cache    RoomCache
}

// NewRoomService は客室サービスを作成する。cache は nil でもよい
func NewRoomService(roomRepo room.Repository, cache RoomCache) *RoomService {
	return &RoomService{roomRepo: roomRepo, cache: cache}
}

type CreateRoomInput struct {
	Number        string
	Type          string
	PricePerNight money.Money
	Capacity      int
}

func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*room.Room, error) {
	rm := room.NewRoom(input.Number, input.Type, input.PricePerNight, input.Capacity)
	if err := rm.Validate(); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Create(ctx, rm); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rm, nil
}

// UpdateRoomInput は客室の更新内容。nil の項目は変更しない
type UpdateRoomInput struct {
	ID            string
	Number        *string
	Type          *string
	PricePerNight *money.Money
	Capacity      *int
	IsAvailable   *bool
}

func (s *RoomService) UpdateRoom(ctx context.Context, input UpdateRoomInput) (*room.Room, error) {
	rm, err := s.roomRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Number != nil {
		rm.Number = *input.Number
	}
	if input.Type != nil {
		rm.Type = *input.Type
	}
	if input.PricePerNight != nil {
		rm.PricePerNight = *input.PricePerNight
	}
	if input.Capacity != nil {
		rm.Capacity = *input.Capacity
	}
	if input.IsAvailable != nil {
		rm.IsAvailable = *input.IsAvailable
	}
	if err := rm.Validate(); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Update(ctx, rm); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rm, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*room.Room, error) {
	return s.roomRepo.GetByID(ctx, id)
}

// ListRooms は客室一覧を返す。キャッシュがあれば先に参照する
func (s *RoomService) ListRooms(ctx context.Context, filter room.Filter) ([]*room.Room, error) {
	if s.cache != nil {
		if rooms, err := s.cache.GetRooms(ctx, filter); err == nil {
			return rooms, nil
		}
	}

	rooms, err := s.roomRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("客室一覧取得に失敗: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetRooms(ctx, filter, rooms); err != nil {
			logger.Warn("客室キャッシュの保存に失敗しました", zap.Error(err))
		}
	}
	return rooms, nil
}

// Provision はシード定義から客室を作成する。同じ客室番号が既にあれば飛ばす
func (s *RoomService) Provision(ctx context.Context, inputs []CreateRoomInput) (int, error) {
	created := 0
	for _, input := range inputs {
		_, err := s.CreateRoom(ctx, input)
		if errors.Is(err, room.ErrRoomNumberConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("客室 %s の作成に失敗: %w", input.Number, err)
		}
		created++
	}
	return created, nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRooms(ctx); err != nil {
		logger.Warn("客室キャッシュの無効化に失敗しました", zap.Error(err))
	}
}
