package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/locking"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/memory"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/settlement"
)

func newBenchService(b *testing.B, rooms int) (*ReservationService, []string) {
	b.Helper()
	ctx := context.Background()
	roomRepo := memory.NewRoomRepository()
	roomService := NewRoomService(roomRepo, nil)

	ids := make([]string, rooms)
	for i := range ids {
		rm, err := roomService.CreateRoom(ctx, CreateRoomInput{
			Number: fmt.Sprintf("%04d", i), Type: "double", PricePerNight: money.FromFloat(100), Capacity: 2,
		})
		if err != nil {
			b.Fatal(err)
		}
		ids[i] = rm.ID
	}
	svc := NewReservationService(roomRepo, memory.NewReservationRepository(), memory.NewPaymentRepository(),
		locking.NewLockManager(), settlement.NewScripted())
	return svc, ids
}

// BenchmarkCreateReservation_SingleRoom は同一客室への連続予約を計測する
func BenchmarkCreateReservation_SingleRoom(b *testing.B) {
	svc, ids := newBenchService(b, 1)
	ctx := context.Background()
	base := mustDate("2030-01-01")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checkIn := base.AddDate(0, 0, i)
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			UserID:   "bench",
			RoomID:   ids[0],
			CheckIn:  checkIn.Format(reservation.DateLayout),
			CheckOut: checkIn.AddDate(0, 0, 1).Format(reservation.DateLayout),
			Guests:   1,
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCreateReservation_ParallelRooms は異なる客室への並行予約を計測する
func BenchmarkCreateReservation_ParallelRooms(b *testing.B) {
	svc, ids := newBenchService(b, 64)
	ctx := context.Background()
	base := mustDate("2030-01-01")
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			n := atomic.AddInt64(&counter, 1)
			checkIn := base.AddDate(0, 0, int(n/int64(len(ids))))
			_, err := svc.CreateReservation(ctx, CreateReservationInput{
				UserID:   "bench",
				RoomID:   ids[n%int64(len(ids))],
				CheckIn:  checkIn.Format(reservation.DateLayout),
				CheckOut: checkIn.AddDate(0, 0, 1).Format(reservation.DateLayout),
				Guests:   1,
			})
			if err != nil {
				b.Error(err)
				return
			}
		}
	})
}
