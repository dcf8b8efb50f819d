package payment

import "github.com/sanosuguru/go-hotel-reservation/internal/domain/apperror"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound        = apperror.New(apperror.KindNotFound, "決済が見つかりません")
	ErrPaymentNotPending      = apperror.New(apperror.KindInvalidState, "決済は処理待ちではありません")
	ErrPaymentNotProcessing   = apperror.New(apperror.KindInvalidState, "決済は処理中ではありません")
	ErrPaymentNotCompleted    = apperror.New(apperror.KindInvalidState, "決済は完了していません")
	ErrReservationIDRequired  = apperror.New(apperror.KindValidation, "予約IDは必須です")
	ErrInvalidAmount          = apperror.New(apperror.KindValidation, "決済金額が不正です")
	ErrCurrencyRequired       = apperror.New(apperror.KindValidation, "通貨は必須です")
	ErrSettlementFailed       = apperror.New(apperror.KindSettlement, "決済が完了しませんでした")
	ErrOptimisticLockConflict = apperror.New(apperror.KindContention, "楽観的ロックの競合が発生しました")
)
