package api

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
// "date" タグで宿泊日（YYYY-MM-DD または RFC3339）を検証できる
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("date", validateDate)
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, describe(err))
	}
	return nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := reservation.ParseDate(fl.Field().String())
	return err == nil
}

// describe は検証エラーを項目ごとのメッセージにまとめる
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+"は必須です")
		case "date":
			msgs = append(msgs, fe.Field()+"はYYYY-MM-DD形式で指定してください")
		default:
			msgs = append(msgs, fe.Field()+"が不正です（"+fe.Tag()+"="+fe.Param()+"）")
		}
	}
	return strings.Join(msgs, ", ")
}
