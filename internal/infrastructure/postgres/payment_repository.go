package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
)

type paymentRow struct {
	ID             string     `db:"id"`
	ReservationID  string     `db:"reservation_id"`
	BaseAmount     int64      `db:"base_cents"`
	Surcharge      int64      `db:"surcharge_cents"`
	Amount         int64      `db:"amount_cents"`
	Currency       string     `db:"currency"`
	Status         string     `db:"status"`
	TransactionRef *string    `db:"transaction_ref"`
	SettledAt      *time.Time `db:"settled_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	Version        int        `db:"version"`
}

const paymentColumns = `id, reservation_id, base_cents, surcharge_cents, amount_cents, currency, status, transaction_ref, settled_at, created_at, updated_at, version`

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `INSERT INTO payments (reservation_id, base_cents, surcharge_cents, amount_cents, currency, status, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		p.ReservationID, int64(p.BaseAmount), int64(p.Surcharge), int64(p.Amount),
		p.Currency, string(p.Status), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("決済作成に失敗: %w", err)
	}
	p.Version = 1
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	if !validID(id) {
		return nil, payment.ErrPaymentNotFound
	}
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID string) (*payment.Payment, error) {
	if !validID(reservationID) {
		return nil, payment.ErrPaymentNotFound
	}
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reservation_id = $1`, reservationID)
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	if !validID(p.ID) {
		return payment.ErrPaymentNotFound
	}
	p.UpdatedAt = time.Now()
	query := `UPDATE payments SET status = $1, transaction_ref = $2, settled_at = $3, updated_at = $4, version = version + 1 WHERE id = $5 AND version = $6`
	result, err := r.db.ExecContext(ctx, query, string(p.Status), p.TransactionRef, p.SettledAt, p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("決済更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, p.ID); err != nil {
			return fmt.Errorf("決済更新に失敗: %w", err)
		}
		if !exists {
			return payment.ErrPaymentNotFound
		}
		return payment.ErrOptimisticLockConflict
	}
	p.Version++
	return nil
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg string) (*payment.Payment, error) {
	var row paymentRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("決済取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (row *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID: row.ID, ReservationID: row.ReservationID,
		BaseAmount: money.Money(row.BaseAmount), Surcharge: money.Money(row.Surcharge), Amount: money.Money(row.Amount),
		Currency: row.Currency, Status: payment.Status(row.Status),
		TransactionRef: row.TransactionRef, SettledAt: row.SettledAt,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt, Version: row.Version,
	}
}

var _ payment.Repository = (*PaymentRepository)(nil)
