package room

import "github.com/sanosuguru/go-hotel-reservation/internal/domain/apperror"

// Room ドメインのエラー定義
var (
	ErrRoomNotFound       = apperror.New(apperror.KindNotFound, "客室が見つかりません")
	ErrRoomNumberRequired = apperror.New(apperror.KindValidation, "客室番号は必須です")
	ErrRoomTypeRequired   = apperror.New(apperror.KindValidation, "客室タイプは必須です")
	ErrInvalidPrice       = apperror.New(apperror.KindValidation, "料金は0以上である必要があります")
	ErrInvalidCapacity    = apperror.New(apperror.KindValidation, "定員は1以上である必要があります")
	ErrCapacityExceeded   = apperror.New(apperror.KindValidation, "宿泊人数が客室の定員を超えています")
	ErrRoomNumberConflict = apperror.New(apperror.KindInvalidState, "同じ客室番号が既に存在します")
)
