package handler

import (
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

type RoomResponse struct {
	ID            string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Number        string    `json:"number" example:"101"`
	Type          string    `json:"type" example:"deluxe"`
	PricePerNight float64   `json:"price_per_night" example:"150.00"`
	Capacity      int       `json:"capacity" example:"2"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID: r.ID, Number: r.Number, Type: r.Type,
		PricePerNight: r.PricePerNight.Float64(), Capacity: r.Capacity,
		IsAvailable: r.IsAvailable, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ReservationResponse struct {
	ID           string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RoomID       string    `json:"room_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID       string    `json:"user_id" example:"user-123"`
	CheckInDate  string    `json:"check_in_date" example:"2025-07-01"`
	CheckOutDate string    `json:"check_out_date" example:"2025-07-06"`
	Nights       int       `json:"nights" example:"5"`
	Guests       int       `json:"guests" example:"2"`
	TotalPrice   float64   `json:"total_price" example:"750.00"`
	Status       string    `json:"status" example:"pending"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, RoomID: r.RoomID, UserID: r.UserID,
		CheckInDate:  formatDate(r.CheckInDate),
		CheckOutDate: formatDate(r.CheckOutDate),
		Nights:       r.Nights(), Guests: r.Guests,
		TotalPrice: r.TotalPrice.Float64(), Status: string(r.Status), Note: r.Note,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type PaymentResponse struct {
	ID             string     `json:"id"`
	ReservationID  string     `json:"reservation_id"`
	BaseAmount     float64    `json:"base_amount" example:"750.00"`
	Surcharge      float64    `json:"surcharge" example:"22.50"`
	Amount         float64    `json:"amount" example:"772.50"`
	Currency       string     `json:"currency" example:"USD"`
	Status         string     `json:"status" example:"pending"`
	TransactionRef *string    `json:"transaction_ref,omitempty"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID: p.ID, ReservationID: p.ReservationID,
		BaseAmount: p.BaseAmount.Float64(), Surcharge: p.Surcharge.Float64(), Amount: p.Amount.Float64(),
		Currency: p.Currency, Status: string(p.Status),
		TransactionRef: p.TransactionRef, SettledAt: p.SettledAt, CreatedAt: p.CreatedAt,
	}
}

func formatDate(t time.Time) string {
	return t.Format(reservation.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
