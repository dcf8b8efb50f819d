package notification

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

// EventType は通知の種類
type EventType string

const (
	EventConfirmed EventType = "reservation.confirmed"
	EventCancelled EventType = "reservation.cancelled"
)

// Snapshot は通知時点の予約・客室・決済の読み取り専用コピー
type Snapshot struct {
	Reservation reservation.Reservation
	Room        *room.Room
	Payment     *payment.Payment
	RequesterID string
	OccurredAt  time.Time
}

// Notifier は予約の確定・キャンセルを外部へ通知する
type Notifier interface {
	NotifyConfirmed(ctx context.Context, s Snapshot) error
	NotifyCancelled(ctx context.Context, s Snapshot) error
}

// Message は外部へ送る通知の形式
type Message struct {
	Event         EventType `json:"event"`
	ReservationID string    `json:"reservation_id"`
	RequesterID   string    `json:"requester_id"`
	RoomID        string    `json:"room_id"`
	RoomNumber    string    `json:"room_number,omitempty"`
	CheckInDate   string    `json:"check_in_date"`
	CheckOutDate  string    `json:"check_out_date"`
	Guests        int       `json:"guests"`
	Status        string    `json:"status"`
	PaymentID     string    `json:"payment_id,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewMessage はスナップショットから通知メッセージを組み立てる
func NewMessage(event EventType, s Snapshot) Message {
	m := Message{
		Event:         event,
		ReservationID: s.Reservation.ID,
		RequesterID:   s.RequesterID,
		RoomID:        s.Reservation.RoomID,
		CheckInDate:   s.Reservation.CheckInDate.Format(reservation.DateLayout),
		CheckOutDate:  s.Reservation.CheckOutDate.Format(reservation.DateLayout),
		Guests:        s.Reservation.Guests,
		Status:        string(s.Reservation.Status),
		OccurredAt:    s.OccurredAt,
	}
	if s.Room != nil {
		m.RoomNumber = s.Room.Number
	}
	if s.Payment != nil {
		m.PaymentID = s.Payment.ID
		m.PaymentStatus = string(s.Payment.Status)
		m.Amount = s.Payment.Amount.String()
		m.Currency = s.Payment.Currency
	}
	return m
}
