package application

import "github.com/sanosuguru/go-hotel-reservation/internal/domain/apperror"

var (
	// ErrLockTimeout は客室ロックを時間内に取得できなかったことを表す（再試行可能）
	ErrLockTimeout = apperror.New(apperror.KindContention, "他の予約を処理中です。しばらくしてから再試行してください")
)
