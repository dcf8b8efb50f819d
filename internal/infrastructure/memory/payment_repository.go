package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
)

// PaymentRepository はプロセス内メモリの決済リポジトリ
type PaymentRepository struct {
	mu            sync.RWMutex
	payments      map[string]payment.Payment
	byReservation map[string]string
	// failCreate はテストで書き込み失敗を再現するためのフック
	failCreate error
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments:      make(map[string]payment.Payment),
		byReservation: make(map[string]string),
	}
}

// FailNextCreate は次の Create を指定したエラーで失敗させる
func (r *PaymentRepository) FailNextCreate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreate = err
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		err := r.failCreate
		r.failCreate = nil
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Version = 1
	r.payments[p.ID] = clonePayment(p)
	r.byReservation[p.ReservationID] = p.ID
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	c := clonePayment(&p)
	return &c, nil
}

func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byReservation[reservationID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	p := r.payments[id]
	c := clonePayment(&p)
	return &c, nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.payments[p.ID]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	if current.Version != p.Version {
		return payment.ErrOptimisticLockConflict
	}
	p.Version++
	p.UpdatedAt = time.Now()
	r.payments[p.ID] = clonePayment(p)
	return nil
}

// clonePayment はポインタ項目を含めて決済を複製する
func clonePayment(p *payment.Payment) payment.Payment {
	c := *p
	if p.TransactionRef != nil {
		ref := *p.TransactionRef
		c.TransactionRef = &ref
	}
	if p.SettledAt != nil {
		at := *p.SettledAt
		c.SettledAt = &at
	}
	return c
}

var _ payment.Repository = (*PaymentRepository)(nil)
