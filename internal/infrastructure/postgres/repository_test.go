//go:build integration
// +build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-reservation/internal/config"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

// setupDB はテスト用DBに接続する。DB未起動時はスキップ
func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := config.Load()
	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	require.NoError(t, RunMigrations(db.DB, "../../../migrations"))
	_, err = db.Exec("TRUNCATE TABLE payments, reservations, rooms CASCADE")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestRoom(t *testing.T, repo *RoomRepository, number string) *room.Room {
	t.Helper()
	rm := room.NewRoom(number, "deluxe", money.FromFloat(150), 2)
	require.NoError(t, repo.Create(context.Background(), rm))
	return rm
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := reservation.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRoomRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	t.Run("作成と取得", func(t *testing.T) {
		rm := createTestRoom(t, repo, "101")
		assert.NotEmpty(t, rm.ID)

		got, err := repo.GetByID(ctx, rm.ID)
		require.NoError(t, err)
		assert.Equal(t, "101", got.Number)
		assert.Equal(t, money.FromFloat(150), got.PricePerNight)
	})

	t.Run("客室番号の重複はエラー", func(t *testing.T) {
		err := repo.Create(ctx, room.NewRoom("101", "standard", money.FromFloat(80), 1))
		assert.ErrorIs(t, err, room.ErrRoomNumberConflict)
	})

	t.Run("不正なIDは見つからない", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, room.ErrRoomNotFound)
	})

	t.Run("条件で絞り込み番号順で返す", func(t *testing.T) {
		createTestRoom(t, repo, "099")
		cheap := room.NewRoom("201", "standard", money.FromFloat(80), 4)
		require.NoError(t, repo.Create(ctx, cheap))

		all, err := repo.List(ctx, room.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "099", all[0].Number)

		filtered, err := repo.List(ctx, room.Filter{MinCapacity: 3, MaxPrice: money.FromFloat(100)})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, "201", filtered[0].Number)
	})
}

func TestReservationRepository(t *testing.T) {
	db := setupDB(t)
	rooms := NewRoomRepository(db)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	rm := createTestRoom(t, rooms, "301")

	newRes := func() *reservation.Reservation {
		res := reservation.NewReservation(rm.ID, "user-1", mustDate(t, "2025-07-01"), mustDate(t, "2025-07-04"), 2, money.FromFloat(450), "")
		require.NoError(t, repo.Create(ctx, res))
		return res
	}

	t.Run("作成すると日付が保持される", func(t *testing.T) {
		res := newRes()
		assert.Equal(t, 1, res.Version)

		got, err := repo.GetByID(ctx, res.ID)
		require.NoError(t, err)
		assert.True(t, got.CheckInDate.Equal(mustDate(t, "2025-07-01")))
		assert.Equal(t, 3, got.Nights())
		assert.Equal(t, reservation.StatusPending, got.Status)
	})

	t.Run("古いバージョンでの更新は競合", func(t *testing.T) {
		res := newRes()
		stale := *res

		require.NoError(t, res.Confirm())
		require.NoError(t, repo.Update(ctx, res))
		assert.Equal(t, 2, res.Version)

		require.NoError(t, stale.Cancel())
		assert.ErrorIs(t, repo.Update(ctx, &stale), reservation.ErrOptimisticLockConflict)
	})

	t.Run("存在しない予約の更新", func(t *testing.T) {
		res := &reservation.Reservation{ID: "00000000-0000-0000-0000-000000000000", Status: reservation.StatusCancelled, Version: 1}
		assert.ErrorIs(t, repo.Update(ctx, res), reservation.ErrReservationNotFound)
	})

	t.Run("客室とユーザーで一覧取得", func(t *testing.T) {
		byRoom, err := repo.ListByRoom(ctx, rm.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, byRoom)

		byUser, err := repo.ListByUser(ctx, "user-1", 1, 0)
		require.NoError(t, err)
		assert.Len(t, byUser, 1)
	})

	t.Run("古い決済待ち予約を取得", func(t *testing.T) {
		newRes()
		stale, err := repo.ListStalePending(ctx, -time.Minute)
		require.NoError(t, err)
		for _, res := range stale {
			assert.Equal(t, reservation.StatusPending, res.Status)
		}
		assert.NotEmpty(t, stale)
	})
}

func TestPaymentRepository(t *testing.T) {
	db := setupDB(t)
	rooms := NewRoomRepository(db)
	reservations := NewReservationRepository(db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	rm := createTestRoom(t, rooms, "401")
	res := reservation.NewReservation(rm.ID, "user-1", mustDate(t, "2025-08-01"), mustDate(t, "2025-08-03"), 1, money.FromFloat(300), "")
	require.NoError(t, reservations.Create(ctx, res))

	p := payment.NewPayment(res.ID, payment.NewQuote(2, money.FromFloat(150), 300), "USD")
	require.NoError(t, repo.Create(ctx, p))

	t.Run("予約IDから取得", func(t *testing.T) {
		got, err := repo.GetByReservationID(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, money.FromFloat(309), got.Amount)
		assert.Nil(t, got.TransactionRef)
	})

	t.Run("決済完了を保存", func(t *testing.T) {
		require.NoError(t, p.StartProcessing())
		require.NoError(t, repo.Update(ctx, p))
		require.NoError(t, p.Complete("TXN-1", time.Now()))
		require.NoError(t, repo.Update(ctx, p))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCompleted, got.Status)
		require.NotNil(t, got.TransactionRef)
		assert.Equal(t, "TXN-1", *got.TransactionRef)
		assert.NotNil(t, got.SettledAt)
		assert.Equal(t, 3, got.Version)
	})

	t.Run("存在しない決済", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	})
}
