package locking

import (
	"context"
	"sync"
	"time"
)

// LockManager はキー単位の排他ロックをプロセス内で管理する
// 同じキーを同時に保持できるのは1つだけで、異なるキーは互いに待たない
type LockManager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]chan struct{})}
}

func (m *LockManager) slot(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	return ch
}

// Acquire はキーのロックを取得する
// timeout までに取得できなければ false を返す。ctx がキャンセルされた場合はエラーを返す
func (m *LockManager) Acquire(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	ch := m.slot(key)

	select {
	case ch <- struct{}{}:
		return true, nil
	default:
	}
	if timeout <= 0 {
		return false, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Release はキーのロックを解放する。保持されていないキーの解放は何もしない
func (m *LockManager) Release(ctx context.Context, key string) error {
	ch := m.slot(key)
	select {
	case <-ch:
	default:
	}
	return nil
}

// IsLocked はキーが保持されているかを返す
func (m *LockManager) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.locks[key]
	return ok && len(ch) == 1
}
