package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/memory"
)

func TestProvisionRooms(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRoomRepository()
	svc := application.NewRoomService(repo, nil)

	t.Run("同梱のシードファイルを投入できる", func(t *testing.T) {
		require.NoError(t, provisionRooms(ctx, svc, "../../configs/rooms.yaml"))

		rooms, err := repo.List(ctx, room.Filter{})
		require.NoError(t, err)
		require.Len(t, rooms, 4)
		assert.Equal(t, "101", rooms[0].Number)
		assert.Equal(t, money.FromFloat(95), rooms[0].PricePerNight)
	})

	t.Run("再投入しても重複しない", func(t *testing.T) {
		require.NoError(t, provisionRooms(ctx, svc, "../../configs/rooms.yaml"))

		rooms, err := repo.List(ctx, room.Filter{})
		require.NoError(t, err)
		assert.Len(t, rooms, 4)
	})

	t.Run("存在しないファイルはエラー", func(t *testing.T) {
		err := provisionRooms(ctx, svc, filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("不正な客室はエラー", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rooms.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rooms:\n  - number: \"999\"\n    type: standard\n    price_per_night: 80\n    capacity: 0\n"), 0o600))

		err := provisionRooms(ctx, svc, path)
		assert.Error(t, err)
	})
}
