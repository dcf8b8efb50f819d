package payment

import "context"

// Repository は決済リポジトリのインターフェース
type Repository interface {
	// Create は新しい決済を作成する
	Create(ctx context.Context, payment *Payment) error

	// GetByID はIDから決済を取得する
	GetByID(ctx context.Context, id string) (*Payment, error)

	// GetByReservationID は予約IDから決済を取得する
	GetByReservationID(ctx context.Context, reservationID string) (*Payment, error)

	// Update は決済を更新する（楽観的ロック）
	Update(ctx context.Context, payment *Payment) error
}
