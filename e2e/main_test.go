package e2e

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/handler"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/config"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/locking"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/memory"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/settlement"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
)

// today はE2Eテストでの「当日」
var today = time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo    *echo.Echo
	Settler *settlement.Scripted
	Metrics *metrics.Metrics
}

type serverOptions struct {
	rateLimit config.RateLimitConfig
}

// NewTestServer はインメモリのストアでテスト用サーバーを作成する
// outcomes は決済結果の台本（省略時はすべて成功）
func NewTestServer(t *testing.T, outcomes ...bool) *TestServer {
	return newTestServer(t, serverOptions{rateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000}}, outcomes...)
}

func newTestServer(t *testing.T, opts serverOptions, outcomes ...bool) *TestServer {
	t.Helper()

	rooms := memory.NewRoomRepository()
	reservations := memory.NewReservationRepository()
	payments := memory.NewPaymentRepository()
	settler := settlement.NewScripted(outcomes...)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	roomService := application.NewRoomService(rooms, nil)
	availabilityService := application.NewAvailabilityService(rooms, reservations)
	reservationService := application.NewReservationService(
		rooms, reservations, payments, locking.NewLockManager(), settler,
		application.WithClock(func() time.Time { return today }),
		application.WithLockTimeout(2*time.Second),
		application.WithMetrics(m),
	)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	handler.RegisterRoutes(e, handler.Handlers{
		Room:         handler.NewRoomHandler(roomService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Reservation:  handler.NewReservationHandler(reservationService),
		Payment:      handler.NewPaymentHandler(reservationService),
		Health:       handler.NewHealthHandler(),
	}, middleware.NewRateLimiter(opts.rateLimit).Middleware())

	return &TestServer{Echo: e, Settler: settler, Metrics: m}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// decode はレスポンスをmapに変換する
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
