package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-reservation/internal/application"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CreateReservationRequest struct {
	RoomID   string `json:"room_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	CheckIn  string `json:"check_in" validate:"required,date" example:"2025-07-01"`
	CheckOut string `json:"check_out" validate:"required,date" example:"2025-07-06"`
	Guests   int    `json:"guests" validate:"required,min=1" example:"2"`
	Note     string `json:"note,omitempty" validate:"max=500"`
}

type CreateReservationResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Payment     PaymentResponse     `json:"payment"`
}

// UnavailableResponse は指定期間に空きがない場合のレスポンス
type UnavailableResponse struct {
	Error             string  `json:"error"`
	Available         bool    `json:"available"`
	NextAvailableFrom *string `json:"next_available_from" example:"2025-07-06"`
}

// Create godoc
// @Summary 予約を作成
// @Description 客室を仮押さえし、決済待ちの予約と決済を作成します
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} CreateReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} UnavailableResponse "指定期間は予約済み"
// @Failure 503 {object} map[string]string "ロック取得タイムアウト"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get(middleware.HeaderUserID)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		UserID: userID, RoomID: req.RoomID,
		CheckIn: req.CheckIn, CheckOut: req.CheckOut,
		Guests: req.Guests, Note: req.Note,
	})
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	if result.Unavailable {
		return c.JSON(http.StatusConflict, UnavailableResponse{
			Error:             "指定期間は予約できません",
			Available:         false,
			NextAvailableFrom: formatDatePtr(result.NextAvailableFrom),
		})
	}
	return c.JSON(http.StatusCreated, CreateReservationResponse{
		Reservation: toReservationResponse(result.Reservation),
		Payment:     toPaymentResponse(result.Payment),
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// GetUserReservations godoc
// @Summary ユーザーの予約一覧を取得
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Failure 401 {object} map[string]string
// @Router /reservations [get]
func (h *ReservationHandler) GetUserReservations(c echo.Context) error {
	userID := c.Request().Header.Get(middleware.HeaderUserID)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	reservations, err := h.service.GetUserReservations(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、確定済みの決済は返金済みにします
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	r, err := h.service.CancelReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// CheckIn godoc
// @Summary チェックイン
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} map[string]string "チェックイン日より前"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/check-in [post]
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	r, err := h.service.CheckIn(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// CheckOut godoc
// @Summary チェックアウト
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/check-out [post]
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	r, err := h.service.CheckOut(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
