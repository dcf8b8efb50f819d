package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

// RoomServiceInterface は客室サービスのインターフェース
type RoomServiceInterface interface {
	CreateRoom(ctx context.Context, input application.CreateRoomInput) (*room.Room, error)
	UpdateRoom(ctx context.Context, input application.UpdateRoomInput) (*room.Room, error)
	GetRoom(ctx context.Context, id string) (*room.Room, error)
	ListRooms(ctx context.Context, filter room.Filter) ([]*room.Room, error)
}

// AvailabilityServiceInterface は空室照会サービスのインターフェース
type AvailabilityServiceInterface interface {
	ListAvailability(ctx context.Context, q application.AvailabilityQuery) ([]*application.RoomAvailability, error)
	NextAvailableFrom(ctx context.Context, roomID string, from time.Time) (*time.Time, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.CreateReservationResult, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	CheckIn(ctx context.Context, id string) (*reservation.Reservation, error)
	CheckOut(ctx context.Context, id string) (*reservation.Reservation, error)
}

// PaymentServiceInterface は決済操作のインターフェース
type PaymentServiceInterface interface {
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	GetPaymentByReservation(ctx context.Context, reservationID string) (*payment.Payment, error)
	SettlePayment(ctx context.Context, paymentID string) (*application.SettlementResult, error)
}

var (
	_ RoomServiceInterface         = (*application.RoomService)(nil)
	_ AvailabilityServiceInterface = (*application.AvailabilityService)(nil)
	_ ReservationServiceInterface  = (*application.ReservationService)(nil)
	_ PaymentServiceInterface      = (*application.ReservationService)(nil)
)
