package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

type roomRow struct {
	ID            string    `db:"id"`
	Number        string    `db:"number"`
	Type          string    `db:"type"`
	PricePerNight int64     `db:"price_per_night_cents"`
	Capacity      int       `db:"capacity"`
	IsAvailable   bool      `db:"is_available"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const roomColumns = `id, number, type, price_per_night_cents, capacity, is_available, created_at, updated_at`

type RoomRepository struct{ db *sqlx.DB }

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, rm *room.Room) error {
	query := `INSERT INTO rooms (number, type, price_per_night_cents, capacity, is_available, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, rm.Number, rm.Type, int64(rm.PricePerNight), rm.Capacity, rm.IsAvailable, rm.CreatedAt, rm.UpdatedAt).Scan(&rm.ID); err != nil {
		if isUniqueViolation(err) {
			return room.ErrRoomNumberConflict
		}
		return fmt.Errorf("客室作成に失敗: %w", err)
	}
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*room.Room, error) {
	if !validID(id) {
		return nil, room.ErrRoomNotFound
	}
	var row roomRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, room.ErrRoomNotFound
		}
		return nil, fmt.Errorf("客室取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *RoomRepository) List(ctx context.Context, filter room.Filter) ([]*room.Room, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.MinCapacity > 0 {
		args = append(args, filter.MinCapacity)
		conds = append(conds, fmt.Sprintf("capacity >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, int64(filter.MaxPrice))
		conds = append(conds, fmt.Sprintf("price_per_night_cents <= $%d", len(args)))
	}

	query := `SELECT ` + roomColumns + ` FROM rooms`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY number`

	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("客室一覧取得に失敗: %w", err)
	}
	result := make([]*room.Room, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *RoomRepository) Update(ctx context.Context, rm *room.Room) error {
	if !validID(rm.ID) {
		return room.ErrRoomNotFound
	}
	rm.UpdatedAt = time.Now()
	query := `UPDATE rooms SET number = $1, type = $2, price_per_night_cents = $3, capacity = $4, is_available = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query, rm.Number, rm.Type, int64(rm.PricePerNight), rm.Capacity, rm.IsAvailable, rm.UpdatedAt, rm.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return room.ErrRoomNumberConflict
		}
		return fmt.Errorf("客室更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return room.ErrRoomNotFound
	}
	return nil
}

func (row *roomRow) toEntity() *room.Room {
	return &room.Room{
		ID: row.ID, Number: row.Number, Type: row.Type,
		PricePerNight: money.Money(row.PricePerNight), Capacity: row.Capacity,
		IsAvailable: row.IsAvailable, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

var _ room.Repository = (*RoomRepository)(nil)
