package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type SettlementResponse struct {
	Succeeded   bool                `json:"succeeded"`
	Reason      string              `json:"reason,omitempty"`
	Payment     PaymentResponse     `json:"payment"`
	Reservation ReservationResponse `json:"reservation"`
}

// GetByID godoc
// @Summary 決済を取得
// @Tags payments
// @Produce json
// @Param id path string true "決済ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

// GetByReservation godoc
// @Summary 予約の決済を取得
// @Tags payments
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id}/payment [get]
func (h *PaymentHandler) GetByReservation(c echo.Context) error {
	p, err := h.service.GetPaymentByReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResponse(p))
}

// Settle godoc
// @Summary 決済を確定
// @Description 成功すると予約が確定し、失敗すると予約はキャンセルされて枠が解放されます
// @Tags payments
// @Produce json
// @Param id path string true "決済ID"
// @Success 200 {object} SettlementResponse
// @Failure 402 {object} SettlementResponse "決済失敗"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /payments/{id}/settle [post]
func (h *PaymentHandler) Settle(c echo.Context) error {
	result, err := h.service.SettlePayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	resp := SettlementResponse{
		Succeeded:   result.Succeeded,
		Reason:      result.Reason,
		Payment:     toPaymentResponse(result.Payment),
		Reservation: toReservationResponse(result.Reservation),
	}
	if err := result.Err(); err != nil {
		return c.JSON(api.StatusOf(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}
