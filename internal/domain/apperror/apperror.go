package apperror

import "errors"

// Kind はエラーの分類を表す
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation は入力やビジネスルール違反（呼び出し側で修正可能）
	KindValidation
	// KindNotFound は対象が存在しない
	KindNotFound
	// KindInvalidState は現在の状態では許可されない遷移
	KindInvalidState
	// KindContention は一時的な競合（リトライ可能）
	KindContention
	// KindSettlement は決済が完了しなかった
	KindSettlement
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindContention:
		return "contention"
	case KindSettlement:
		return "settlement"
	default:
		return "unknown"
	}
}

// Error は分類付きのドメインエラー
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New は分類付きのエラーを作成する
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf はエラーチェーンから分類を取り出す
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is はエラーが指定した分類かを返す
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable はリトライで解決しうるエラーかを返す
func Retryable(err error) bool {
	return Is(err, KindContention)
}
