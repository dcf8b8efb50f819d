package reservation

import "github.com/sanosuguru/go-hotel-reservation/internal/domain/apperror"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound         = apperror.New(apperror.KindNotFound, "予約が見つかりません")
	ErrReservationNotPending       = apperror.New(apperror.KindInvalidState, "予約は決済待ちではありません")
	ErrReservationNotConfirmed     = apperror.New(apperror.KindInvalidState, "予約は確定されていません")
	ErrReservationNotCheckedIn     = apperror.New(apperror.KindInvalidState, "予約はチェックインされていません")
	ErrReservationAlreadyCancelled = apperror.New(apperror.KindInvalidState, "予約は既にキャンセルされています")
	ErrCannotCancelAfterCheckIn    = apperror.New(apperror.KindInvalidState, "チェックイン後の予約はキャンセルできません")
	ErrInvalidTransition           = apperror.New(apperror.KindInvalidState, "許可されていない状態遷移です")
	ErrCheckInTooEarly             = apperror.New(apperror.KindValidation, "チェックイン日より前にはチェックインできません")
	ErrRoomIDRequired              = apperror.New(apperror.KindValidation, "客室IDは必須です")
	ErrUserIDRequired              = apperror.New(apperror.KindValidation, "ユーザーIDは必須です")
	ErrInvalidDate                 = apperror.New(apperror.KindValidation, "日付の形式が不正です")
	ErrInvalidStayRange            = apperror.New(apperror.KindValidation, "チェックアウト日はチェックイン日より後である必要があります")
	ErrInvalidGuests               = apperror.New(apperror.KindValidation, "宿泊人数は1以上である必要があります")
	ErrOptimisticLockConflict      = apperror.New(apperror.KindContention, "楽観的ロックの競合が発生しました")
)
