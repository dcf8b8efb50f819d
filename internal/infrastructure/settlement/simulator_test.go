package settlement

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
)

func TestSimulator(t *testing.T) {
	ctx := context.Background()
	p := &payment.Payment{ID: "pay-1"}

	tests := []struct {
		name      string
		rate      float64
		draw      float64
		succeeded bool
	}{
		{"成功率1なら常に成功", 1.0, 0.999, true},
		{"成功率0なら常に失敗", 0.0, 0.0, false},
		{"乱数が成功率未満なら成功", 0.5, 0.49, true},
		{"乱数が成功率以上なら失敗", 0.5, 0.5, false},
		{"範囲外の成功率は丸められる", 3.0, 0.999, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimulatorWithSource(tt.rate, func() float64 { return tt.draw })
			out, err := s.Settle(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.succeeded, out.Succeeded)
			if tt.succeeded {
				assert.True(t, strings.HasPrefix(out.TransactionRef, "TXN-"))
			} else {
				assert.Empty(t, out.TransactionRef)
			}
		})
	}
}

func TestSimulator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulator(1.0).Settle(ctx, &payment.Payment{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewTransactionRef_Unique(t *testing.T) {
	assert.NotEqual(t, NewTransactionRef(), NewTransactionRef())
}

func TestScripted(t *testing.T) {
	ctx := context.Background()
	s := NewScripted(false, true)

	out, err := s.Settle(ctx, &payment.Payment{})
	require.NoError(t, err)
	assert.False(t, out.Succeeded)

	out, err = s.Settle(ctx, &payment.Payment{})
	require.NoError(t, err)
	assert.True(t, out.Succeeded)

	// 指定を使い切った後は成功
	out, err = s.Settle(ctx, &payment.Payment{})
	require.NoError(t, err)
	assert.True(t, out.Succeeded)
	assert.Equal(t, 3, s.Calls())
}
