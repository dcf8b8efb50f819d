package room

import "context"

// Repository は客室リポジトリのインターフェース
type Repository interface {
	// Create は新しい客室を作成する
	Create(ctx context.Context, room *Room) error

	// GetByID はIDから客室を取得する
	GetByID(ctx context.Context, id string) (*Room, error)

	// List は条件に一致する客室を客室番号順で取得する
	List(ctx context.Context, filter Filter) ([]*Room, error)

	// Update は客室を更新する
	Update(ctx context.Context, room *Room) error
}
