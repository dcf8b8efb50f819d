package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

// StalePendingRollbacker は決済されないまま放置された予約を巻き戻す
type StalePendingRollbacker interface {
	RollbackStalePending(ctx context.Context, olderThan time.Duration) (int, error)
}

// StalePendingCleaner は未決済のまま残った予約を定期的に巻き戻すワーカー
type StalePendingCleaner struct {
	reservationService StalePendingRollbacker
	interval           time.Duration
	staleAfter         time.Duration
	started            atomic.Bool
	stopOnce           sync.Once
	stopCh             chan struct{}
	doneCh             chan struct{}
}

func NewStalePendingCleaner(rs StalePendingRollbacker, interval, staleAfter time.Duration) *StalePendingCleaner {
	return &StalePendingCleaner{
		reservationService: rs,
		interval:           interval,
		staleAfter:         staleAfter,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はワーカーを開始する。ctx のキャンセルか Stop で終了するまで戻らない
func (c *StalePendingCleaner) Start(ctx context.Context) {
	c.started.Store(true)
	defer close(c.doneCh)

	logger.Info("未決済予約クリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Duration("stale_after", c.staleAfter),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("未決済予約クリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("未決済予約クリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はワーカーを停止し、終了を待つ。複数回呼んでもよい
func (c *StalePendingCleaner) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if c.started.Load() {
		<-c.doneCh
	}
}

func (c *StalePendingCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("未決済予約のクリーンアップ開始")

	count, err := c.reservationService.RollbackStalePending(ctx, c.staleAfter)
	if err != nil {
		log.Error("未決済予約のクリーンアップ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("未決済予約をキャンセル", zap.Int("count", count))
	} else {
		log.Debug("未決済予約なし")
	}
}
