package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

type AvailabilityHandler struct {
	service AvailabilityServiceInterface
	now     func() time.Time
}

func NewAvailabilityHandler(s AvailabilityServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{service: s, now: func() time.Time { return time.Now().UTC() }}
}

type AvailabilityResponse struct {
	Room              RoomResponse `json:"room"`
	Available         bool         `json:"available"`
	NextAvailableFrom *string      `json:"next_available_from,omitempty" example:"2025-07-06"`
}

type NextAvailableResponse struct {
	RoomID            string  `json:"room_id"`
	From              string  `json:"from" example:"2025-07-01"`
	Available         bool    `json:"available"`
	NextAvailableFrom *string `json:"next_available_from,omitempty" example:"2025-07-06"`
}

// List godoc
// @Summary 空室状況を検索
// @Description 日程を指定した場合は期間内の空室状況と次に空く日を返す
// @Tags availability
// @Produce json
// @Param check_in query string false "チェックイン日 (YYYY-MM-DD)"
// @Param check_out query string false "チェックアウト日 (YYYY-MM-DD)"
// @Param type query string false "客室タイプ"
// @Param min_capacity query int false "最低定員"
// @Param max_price query number false "1泊あたりの上限料金"
// @Success 200 {array} AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Router /availability [get]
func (h *AvailabilityHandler) List(c echo.Context) error {
	filter, err := parseRoomFilter(c)
	if err != nil {
		return err
	}
	q := application.AvailabilityQuery{Filter: filter}

	checkIn, checkOut := c.QueryParam("check_in"), c.QueryParam("check_out")
	if (checkIn == "") != (checkOut == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "check_inとcheck_outは両方指定してください")
	}
	if checkIn != "" {
		in, err := reservation.ParseDate(checkIn)
		if err != nil {
			return api.ToHTTPError(c, err)
		}
		out, err := reservation.ParseDate(checkOut)
		if err != nil {
			return api.ToHTTPError(c, err)
		}
		if !out.After(in) {
			return api.ToHTTPError(c, reservation.ErrInvalidStayRange)
		}
		q.CheckIn, q.CheckOut = &in, &out
	}

	results, err := h.service.ListAvailability(c.Request().Context(), q)
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	resp := make([]AvailabilityResponse, len(results))
	for i, ra := range results {
		resp[i] = AvailabilityResponse{
			Room:              toRoomResponse(ra.Room),
			Available:         ra.Available,
			NextAvailableFrom: formatDatePtr(ra.NextAvailableFrom),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// NextAvailable godoc
// @Summary 客室が次に空く日を取得
// @Tags availability
// @Produce json
// @Param id path string true "客室ID"
// @Param from query string false "基準日 (YYYY-MM-DD)。省略時は当日"
// @Success 200 {object} NextAvailableResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /rooms/{id}/availability [get]
func (h *AvailabilityHandler) NextAvailable(c echo.Context) error {
	from := reservation.DateOf(h.now())
	if v := c.QueryParam("from"); v != "" {
		d, err := reservation.ParseDate(v)
		if err != nil {
			return api.ToHTTPError(c, err)
		}
		from = d
	}

	next, err := h.service.NextAvailableFrom(c.Request().Context(), c.Param("id"), from)
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, NextAvailableResponse{
		RoomID:            c.Param("id"),
		From:              formatDate(from),
		Available:         next == nil,
		NextAvailableFrom: formatDatePtr(next),
	})
}
