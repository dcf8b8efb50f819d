package settlement

import (
	"context"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
)

// Simulator は成功率に従って決済結果を返す決済シミュレーター
type Simulator struct {
	successRate float64
	mu          sync.Mutex
	draw        func() float64
}

// NewSimulator は成功率 successRate（0〜1）のシミュレーターを作成する
func NewSimulator(successRate float64) *Simulator {
	return NewSimulatorWithSource(successRate, rand.Float64)
}

// NewSimulatorWithSource は乱数源を指定してシミュレーターを作成する
func NewSimulatorWithSource(successRate float64, draw func() float64) *Simulator {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &Simulator{successRate: successRate, draw: draw}
}

func (s *Simulator) Settle(ctx context.Context, p *payment.Payment) (payment.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return payment.Outcome{}, err
	}

	s.mu.Lock()
	v := s.draw()
	s.mu.Unlock()

	if v >= s.successRate {
		return payment.Outcome{Succeeded: false, Reason: "決済が拒否されました"}, nil
	}
	return payment.Outcome{Succeeded: true, TransactionRef: NewTransactionRef()}, nil
}

// NewTransactionRef は決済参照番号を生成する
func NewTransactionRef() string {
	return "TXN-" + uuid.New().String()
}

// Scripted は事前に指定した結果を順に返す。結果が尽きた後は成功を返す
type Scripted struct {
	mu       sync.Mutex
	outcomes []bool
	calls    int
}

func NewScripted(outcomes ...bool) *Scripted {
	return &Scripted{outcomes: outcomes}
}

func (s *Scripted) Settle(ctx context.Context, p *payment.Payment) (payment.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	succeeded := true
	if s.calls < len(s.outcomes) {
		succeeded = s.outcomes[s.calls]
	}
	s.calls++
	if !succeeded {
		return payment.Outcome{Succeeded: false, Reason: "決済が拒否されました"}, nil
	}
	return payment.Outcome{Succeeded: true, TransactionRef: NewTransactionRef()}, nil
}

// Calls は呼び出し回数を返す
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var (
	_ payment.Settler = (*Simulator)(nil)
	_ payment.Settler = (*Scripted)(nil)
)
