package payment

import "context"

// Outcome は決済処理の結果
type Outcome struct {
	Succeeded      bool
	TransactionRef string
	Reason         string
}

// Settler は決済を確定する外部処理（ゲートウェイやシミュレーター）
type Settler interface {
	Settle(ctx context.Context, p *Payment) (Outcome, error)
}

// SettlerFunc は関数をSettlerとして扱うアダプター
type SettlerFunc func(ctx context.Context, p *Payment) (Outcome, error)

// Settle は f を呼び出す
func (f SettlerFunc) Settle(ctx context.Context, p *Payment) (Outcome, error) {
	return f(ctx, p)
}
