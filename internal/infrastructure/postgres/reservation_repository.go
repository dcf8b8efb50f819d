package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

type reservationRow struct {
	ID           string    `db:"id"`
	RoomID       string    `db:"room_id"`
	UserID       string    `db:"user_id"`
	CheckInDate  time.Time `db:"check_in_date"`
	CheckOutDate time.Time `db:"check_out_date"`
	Guests       int       `db:"guests"`
	TotalPrice   int64     `db:"total_price_cents"`
	Status       string    `db:"status"`
	Note         string    `db:"note"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	Version      int       `db:"version"`
}

const reservationColumns = `id, room_id, user_id, check_in_date, check_out_date, guests, total_price_cents, status, note, created_at, updated_at, version`

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	query := `INSERT INTO reservations (room_id, user_id, check_in_date, check_out_date, guests, total_price_cents, status, note, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		res.RoomID, res.UserID,
		res.CheckInDate.Format(reservation.DateLayout), res.CheckOutDate.Format(reservation.DateLayout),
		res.Guests, int64(res.TotalPrice), string(res.Status), res.Note, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	res.Version = 1
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	if !validID(id) {
		return nil, reservation.ErrReservationNotFound
	}
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) ListByRoom(ctx context.Context, roomID string) ([]*reservation.Reservation, error) {
	if !validID(roomID) {
		return []*reservation.Reservation{}, nil
	}
	return r.selectMany(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE room_id = $1 ORDER BY check_in_date`, roomID)
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	return r.selectMany(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	if !validID(res.ID) {
		return reservation.ErrReservationNotFound
	}
	res.UpdatedAt = time.Now()
	query := `UPDATE reservations SET status = $1, note = $2, updated_at = $3, version = version + 1 WHERE id = $4 AND version = $5`
	result, err := r.db.ExecContext(ctx, query, string(res.Status), res.Note, res.UpdatedAt, res.ID, res.Version)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, res.ID); err != nil {
			return fmt.Errorf("予約更新に失敗: %w", err)
		}
		if !exists {
			return reservation.ErrReservationNotFound
		}
		return reservation.ErrOptimisticLockConflict
	}
	res.Version++
	return nil
}

func (r *ReservationRepository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]*reservation.Reservation, error) {
	threshold := time.Now().Add(-olderThan)
	return r.selectMany(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`, threshold)
}

func (r *ReservationRepository) selectMany(ctx context.Context, query string, args ...interface{}) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID: row.ID, RoomID: row.RoomID, UserID: row.UserID,
		CheckInDate:  reservation.DateOf(row.CheckInDate),
		CheckOutDate: reservation.DateOf(row.CheckOutDate),
		Guests:       row.Guests, TotalPrice: money.Money(row.TotalPrice),
		Status: reservation.Status(row.Status), Note: row.Note,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt, Version: row.Version,
	}
}

var _ reservation.Repository = (*ReservationRepository)(nil)
