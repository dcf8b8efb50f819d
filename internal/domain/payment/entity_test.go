package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
)

func TestNewQuote(t *testing.T) {
	q := NewQuote(5, money.FromFloat(150), 300)

	assert.Equal(t, 5, q.Nights)
	assert.Equal(t, money.FromFloat(750), q.BaseAmount)
	assert.Equal(t, money.FromFloat(22.50), q.Surcharge)
	assert.Equal(t, money.FromFloat(772.50), q.Amount)
	assert.Equal(t, "772.50", q.Amount.String())
}

func TestNewPayment(t *testing.T) {
	p := NewPayment("res-1", NewQuote(2, money.FromFloat(100), 300), "USD")

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, money.FromFloat(206), p.Amount)
	assert.Nil(t, p.TransactionRef)
	assert.Nil(t, p.SettledAt)
	require.NoError(t, p.Validate())
}

func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name        string
		payment     *Payment
		expectedErr error
	}{
		{"予約ID未指定", &Payment{Currency: "USD"}, ErrReservationIDRequired},
		{"金額の不整合", &Payment{ReservationID: "r", BaseAmount: 100, Surcharge: 3, Amount: 100, Currency: "USD"}, ErrInvalidAmount},
		{"通貨未指定", &Payment{ReservationID: "r", BaseAmount: 100, Surcharge: 3, Amount: 103}, ErrCurrencyRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.payment.Validate(), tt.expectedErr)
		})
	}
}

func TestPayment_Lifecycle(t *testing.T) {
	t.Run("処理中を経て完了できる", func(t *testing.T) {
		p := &Payment{Status: StatusPending}
		require.NoError(t, p.StartProcessing())
		assert.Equal(t, StatusProcessing, p.Status)

		settledAt := time.Now()
		require.NoError(t, p.Complete("TXN-1", settledAt))
		assert.Equal(t, StatusCompleted, p.Status)
		require.NotNil(t, p.TransactionRef)
		assert.Equal(t, "TXN-1", *p.TransactionRef)
		assert.Equal(t, settledAt, *p.SettledAt)
	})

	t.Run("処理待ち以外は処理開始できない", func(t *testing.T) {
		p := &Payment{Status: StatusCompleted}
		assert.ErrorIs(t, p.StartProcessing(), ErrPaymentNotPending)
	})

	t.Run("処理中でなければ完了できない", func(t *testing.T) {
		p := &Payment{Status: StatusPending}
		assert.ErrorIs(t, p.Complete("TXN-1", time.Now()), ErrPaymentNotProcessing)
	})

	t.Run("処理中から失敗にできる", func(t *testing.T) {
		p := &Payment{Status: StatusProcessing}
		require.NoError(t, p.Fail())
		assert.Equal(t, StatusFailed, p.Status)
	})

	t.Run("完了済みは失敗にできない", func(t *testing.T) {
		p := &Payment{Status: StatusCompleted}
		assert.ErrorIs(t, p.Fail(), ErrPaymentNotProcessing)
	})

	t.Run("完了済みのみ返金できる", func(t *testing.T) {
		p := &Payment{Status: StatusPending}
		assert.ErrorIs(t, p.Refund(), ErrPaymentNotCompleted)

		p.Status = StatusCompleted
		require.NoError(t, p.Refund())
		assert.Equal(t, StatusRefunded, p.Status)
	})
}

func TestSettlerFunc(t *testing.T) {
	var called bool
	s := SettlerFunc(func(ctx context.Context, p *Payment) (Outcome, error) {
		called = true
		return Outcome{Succeeded: true, TransactionRef: "ref"}, nil
	})

	out, err := s.Settle(context.Background(), &Payment{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, out.Succeeded)
}
