package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Room         *RoomHandler
	Availability *AvailabilityHandler
	Reservation  *ReservationHandler
	Payment      *PaymentHandler
	Health       *HealthHandler
}

// RegisterRoutes は /health と /api/v1 配下のルートを登録する
// createLimits は予約作成にだけ適用するミドルウェア（レート制限など）
func RegisterRoutes(e *echo.Echo, h Handlers, createLimits ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	v1.POST("/rooms", h.Room.Create)
	v1.GET("/rooms", h.Room.List)
	v1.GET("/rooms/:id", h.Room.GetByID)
	v1.PUT("/rooms/:id", h.Room.Update)
	v1.GET("/rooms/:id/availability", h.Availability.NextAvailable)

	v1.GET("/availability", h.Availability.List)

	v1.POST("/reservations", h.Reservation.Create, createLimits...)
	v1.GET("/reservations", h.Reservation.GetUserReservations)
	v1.GET("/reservations/:id", h.Reservation.GetByID)
	v1.POST("/reservations/:id/cancel", h.Reservation.Cancel)
	v1.POST("/reservations/:id/check-in", h.Reservation.CheckIn)
	v1.POST("/reservations/:id/check-out", h.Reservation.CheckOut)
	v1.GET("/reservations/:id/payment", h.Payment.GetByReservation)

	v1.GET("/payments/:id", h.Payment.GetByID)
	v1.POST("/payments/:id/settle", h.Payment.Settle)
}
