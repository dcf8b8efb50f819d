package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

const (
	roomListKeyPrefix = "rooms:list:"
	// roomListIndexKey は無効化のために保存済みキーを保持する集合
	roomListIndexKey = "rooms:list:keys"
)

// RoomCache は客室一覧のキャッシュを管理する
type RoomCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomCache は新しいRoomCacheインスタンスを作成する
func NewRoomCache(client *redis.Client, ttl time.Duration) *RoomCache {
	return &RoomCache{client: client, ttl: ttl}
}

// GetRooms は条件に対応する客室一覧をキャッシュから取得する
func (c *RoomCache) GetRooms(ctx context.Context, filter room.Filter) ([]*room.Room, error) {
	data, err := c.client.Get(ctx, c.roomListKey(filter)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var rooms []*room.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return rooms, nil
}

// SetRooms は条件に対応する客室一覧をキャッシュに保存する
func (c *RoomCache) SetRooms(ctx context.Context, filter room.Filter, rooms []*room.Room) error {
	data, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("キャッシュの直列化に失敗: %w", err)
	}

	key := c.roomListKey(filter)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, roomListIndexKey, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// InvalidateRooms は保存済みの客室一覧をすべて無効化する
func (c *RoomCache) InvalidateRooms(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, roomListIndexKey).Result()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	keys = append(keys, roomListIndexKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *RoomCache) roomListKey(filter room.Filter) string {
	return fmt.Sprintf("%s%s:%d:%d", roomListKeyPrefix, filter.Type, filter.MinCapacity, int64(filter.MaxPrice))
}
