package payment

import (
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
)

// Status は決済の状態を表す
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// Payment は予約に1対1で紐づく決済エンティティ
type Payment struct {
	ID             string
	ReservationID  string
	BaseAmount     money.Money
	Surcharge      money.Money
	Amount         money.Money
	Currency       string
	Status         Status
	TransactionRef *string
	SettledAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int // 楽観的ロック用
}

// NewPayment は見積もりから決済待ちの決済を作成する
func NewPayment(reservationID string, quote Quote, currency string) *Payment {
	now := time.Now()
	return &Payment{
		ReservationID: reservationID,
		BaseAmount:    quote.BaseAmount,
		Surcharge:     quote.Surcharge,
		Amount:        quote.Amount,
		Currency:      currency,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsPending は決済待ちかを返す
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

// StartProcessing は決済処理を開始する
func (p *Payment) StartProcessing() error {
	if p.Status != StatusPending {
		return ErrPaymentNotPending
	}
	p.Status = StatusProcessing
	p.UpdatedAt = time.Now()
	return nil
}

// Complete は決済を完了する
func (p *Payment) Complete(transactionRef string, settledAt time.Time) error {
	if p.Status != StatusProcessing {
		return ErrPaymentNotProcessing
	}
	p.Status = StatusCompleted
	p.TransactionRef = &transactionRef
	p.SettledAt = &settledAt
	p.UpdatedAt = time.Now()
	return nil
}

// Fail は決済を失敗にする
func (p *Payment) Fail() error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return ErrPaymentNotProcessing
	}
	p.Status = StatusFailed
	p.UpdatedAt = time.Now()
	return nil
}

// Refund は完了済みの決済を返金済みにする
func (p *Payment) Refund() error {
	if p.Status != StatusCompleted {
		return ErrPaymentNotCompleted
	}
	p.Status = StatusRefunded
	p.UpdatedAt = time.Now()
	return nil
}

// Validate は決済の検証を行う
func (p *Payment) Validate() error {
	if p.ReservationID == "" {
		return ErrReservationIDRequired
	}
	if p.Amount < 0 || p.Amount != p.BaseAmount+p.Surcharge {
		return ErrInvalidAmount
	}
	if p.Currency == "" {
		return ErrCurrencyRequired
	}
	return nil
}
