package reservation

import (
	"math"
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
)

// DateLayout は宿泊日の入力形式
const DateLayout = "2006-01-02"

// Reservation は予約エンティティを表す
// CheckOutDate は宿泊に含まれない（半開区間 [CheckInDate, CheckOutDate)）
type Reservation struct {
	ID           string
	RoomID       string
	UserID       string
	CheckInDate  time.Time
	CheckOutDate time.Time
	Guests       int
	TotalPrice   money.Money
	Status       Status
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int // 楽観的ロック用
}

// NewReservation は新しい予約を作成する
func NewReservation(roomID, userID string, checkIn, checkOut time.Time, guests int, totalPrice money.Money, note string) *Reservation {
	now := time.Now()
	return &Reservation{
		RoomID:       roomID,
		UserID:       userID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Guests:       guests,
		TotalPrice:   totalPrice,
		Status:       StatusPending,
		Note:         note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ParseDate は宿泊日を解析し、UTCの日付に丸める
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// DateOf は時刻をUTCの日付（0時）に丸める
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CountNights は宿泊数を返す（端数は切り上げ）
func CountNights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Overlaps は半開区間 [aStart, aEnd) と [bStart, bEnd) が重なるかを返す
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Nights は宿泊数を返す
func (r *Reservation) Nights() int {
	return CountNights(r.CheckInDate, r.CheckOutDate)
}

// OverlapsRange は予約が [start, end) と重なるかを返す
func (r *Reservation) OverlapsRange(start, end time.Time) bool {
	return Overlaps(r.CheckInDate, r.CheckOutDate, start, end)
}

// IsActive は予約が空室判定で日程を占有しているかを返す
func (r *Reservation) IsActive() bool {
	return r.Status.BlocksAvailability()
}

// IsPending は予約が決済待ちかを返す
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// Confirm は決済完了により予約を確定する
func (r *Reservation) Confirm() error {
	if r.Status != StatusPending {
		return ErrReservationNotPending
	}
	r.transition(StatusConfirmed)
	return nil
}

// Cancel は予約をキャンセルする
func (r *Reservation) Cancel() error {
	switch r.Status {
	case StatusCancelled:
		return ErrReservationAlreadyCancelled
	case StatusCheckedIn, StatusCheckedOut:
		return ErrCannotCancelAfterCheckIn
	}
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	r.transition(StatusCancelled)
	return nil
}

// CheckIn はチェックインする（チェックイン日以降のみ）
func (r *Reservation) CheckIn(now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrReservationNotConfirmed
	}
	if DateOf(now).Before(DateOf(r.CheckInDate)) {
		return ErrCheckInTooEarly
	}
	r.transition(StatusCheckedIn)
	return nil
}

// CheckOut はチェックアウトする
func (r *Reservation) CheckOut() error {
	if r.Status != StatusCheckedIn {
		return ErrReservationNotCheckedIn
	}
	r.transition(StatusCheckedOut)
	return nil
}

func (r *Reservation) transition(next Status) {
	r.Status = next
	r.UpdatedAt = time.Now()
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.RoomID == "" {
		return ErrRoomIDRequired
	}
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if !r.CheckOutDate.After(r.CheckInDate) {
		return ErrInvalidStayRange
	}
	if r.Guests < 1 {
		return ErrInvalidGuests
	}
	return nil
}
