package reservation

import (
	"context"
	"time"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する
	Create(ctx context.Context, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// ListByRoom は客室の予約を全件取得する（キャンセル済みを含む）
	ListByRoom(ctx context.Context, roomID string) ([]*Reservation, error)

	// ListByUser はユーザーの予約一覧を作成日時の降順で取得する
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Reservation, error)

	// Update は予約を更新する（楽観的ロック）
	Update(ctx context.Context, reservation *Reservation) error

	// ListStalePending は作成から olderThan 以上経過した決済待ちの予約を取得する
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]*Reservation, error)
}
