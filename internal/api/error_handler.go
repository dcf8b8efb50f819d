package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/apperror"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

// RetryAfterSeconds は一時的な競合時に返す Retry-After の秒数
const RetryAfterSeconds = "1"

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

// StatusOf はドメインエラーの分類からHTTPステータスを決める
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidState:
		return http.StatusConflict
	case apperror.KindContention:
		return http.StatusServiceUnavailable
	case apperror.KindSettlement:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPError はドメインエラーを echo.HTTPError に変換する
// 分類のないエラーは内部エラーとして詳細を隠す
func ToHTTPError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := StatusOf(err)
	if code == http.StatusServiceUnavailable {
		c.Response().Header().Set("Retry-After", RetryAfterSeconds)
	}
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "内部サーバーエラー").SetInternal(err)
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
		kind    string
	)

	he, ok := err.(*echo.HTTPError)
	if !ok {
		he, _ = ToHTTPError(c, err).(*echo.HTTPError)
	}
	if he != nil {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
		if he.Internal != nil {
			if k := apperror.KindOf(he.Internal); k != apperror.KindUnknown {
				kind = k.String()
			}
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
		Kind:  kind,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
