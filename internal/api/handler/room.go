package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
)

type RoomHandler struct {
	service RoomServiceInterface
}

func NewRoomHandler(s RoomServiceInterface) *RoomHandler {
	return &RoomHandler{service: s}
}

type CreateRoomRequest struct {
	Number        string  `json:"number" validate:"required,max=32" example:"101"`
	Type          string  `json:"type" validate:"required,max=64" example:"deluxe"`
	PricePerNight float64 `json:"price_per_night" validate:"gte=0" example:"150.00"`
	Capacity      int     `json:"capacity" validate:"required,min=1" example:"2"`
}

type UpdateRoomRequest struct {
	Number        *string  `json:"number,omitempty" validate:"omitempty,min=1,max=32"`
	Type          *string  `json:"type,omitempty" validate:"omitempty,min=1,max=64"`
	PricePerNight *float64 `json:"price_per_night,omitempty" validate:"omitempty,gte=0"`
	Capacity      *int     `json:"capacity,omitempty" validate:"omitempty,min=1"`
	IsAvailable   *bool    `json:"is_available,omitempty"`
}

// Create godoc
// @Summary 客室を登録
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body CreateRoomRequest true "客室情報"
// @Success 201 {object} RoomResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "客室番号が重複"
// @Router /rooms [post]
func (h *RoomHandler) Create(c echo.Context) error {
	var req CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	rm, err := h.service.CreateRoom(c.Request().Context(), application.CreateRoomInput{
		Number: req.Number, Type: req.Type,
		PricePerNight: money.FromFloat(req.PricePerNight), Capacity: req.Capacity,
	})
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoomResponse(rm))
}

// GetByID godoc
// @Summary 客室を取得
// @Tags rooms
// @Produce json
// @Param id path string true "客室ID"
// @Success 200 {object} RoomResponse
// @Failure 404 {object} map[string]string
// @Router /rooms/{id} [get]
func (h *RoomHandler) GetByID(c echo.Context) error {
	rm, err := h.service.GetRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toRoomResponse(rm))
}

// List godoc
// @Summary 客室一覧を取得
// @Tags rooms
// @Produce json
// @Param type query string false "客室タイプ"
// @Param min_capacity query int false "最低定員"
// @Param max_price query number false "1泊あたりの上限料金"
// @Success 200 {array} RoomResponse
// @Router /rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	filter, err := parseRoomFilter(c)
	if err != nil {
		return err
	}
	rooms, err := h.service.ListRooms(c.Request().Context(), filter)
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	resp := make([]RoomResponse, len(rooms))
	for i, rm := range rooms {
		resp[i] = toRoomResponse(rm)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary 客室を更新
// @Tags rooms
// @Accept json
// @Produce json
// @Param id path string true "客室ID"
// @Param request body UpdateRoomRequest true "更新内容"
// @Success 200 {object} RoomResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c echo.Context) error {
	var req UpdateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input := application.UpdateRoomInput{
		ID: c.Param("id"), Number: req.Number, Type: req.Type,
		Capacity: req.Capacity, IsAvailable: req.IsAvailable,
	}
	if req.PricePerNight != nil {
		price := money.FromFloat(*req.PricePerNight)
		input.PricePerNight = &price
	}
	rm, err := h.service.UpdateRoom(c.Request().Context(), input)
	if err != nil {
		return api.ToHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, toRoomResponse(rm))
}

// parseRoomFilter はクエリパラメータから客室の絞り込み条件を組み立てる
func parseRoomFilter(c echo.Context) (room.Filter, error) {
	filter := room.Filter{Type: c.QueryParam("type")}
	if v := c.QueryParam("min_capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "min_capacityが不正です")
		}
		filter.MinCapacity = n
	}
	if v := c.QueryParam("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "max_priceが不正です")
		}
		filter.MaxPrice = money.FromFloat(f)
	}
	return filter, nil
}
