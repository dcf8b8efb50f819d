package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sanosuguru/go-hotel-reservation/internal/config"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
)

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e)

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "test")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger_WithError(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())

	e.GET("/error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLogger_ServerError(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())

	e.GET("/server-error", func(c echo.Context) error {
		return c.String(http.StatusInternalServerError, "internal error")
	})

	req := httptest.NewRequest(http.MethodGet, "/server-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	t.Run("リクエストIDがなければ生成する", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
	})

	t.Run("既存のリクエストIDを維持する", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(echo.HeaderXRequestID, "existing-request-id")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "existing-request-id", rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestGenerateRequestID(t *testing.T) {
	id1 := generateRequestID()
	id2 := generateRequestID()

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestPrometheusMiddleware(t *testing.T) {
	e := echo.New()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	e.Use(PrometheusMiddleware(m))
	e.GET("/rooms/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/rooms/"+id, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// ルートのパターン単位で集計される
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/rooms/:id", "200")))
}

func TestPrometheusMiddleware_WithError(t *testing.T) {
	e := echo.New()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	e.Use(PrometheusMiddleware(m))
	e.GET("/error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/error", "400")))
}

func TestPrometheusMiddleware_NilMetrics(t *testing.T) {
	e := echo.New()
	e.Use(PrometheusMiddleware(nil))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	newEcho := func(rl *RateLimiter) *echo.Echo {
		e := echo.New()
		e.POST("/reservations", func(c echo.Context) error {
			return c.NoContent(http.StatusCreated)
		}, rl.Middleware())
		return e
	}
	do := func(e *echo.Echo, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/reservations", nil)
		if userID != "" {
			req.Header.Set(HeaderUserID, userID)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("バースト分までは許可し超過すると429", func(t *testing.T) {
		rl := NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 2})
		e := newEcho(rl)

		assert.Equal(t, http.StatusCreated, do(e, "user-1").Code)
		assert.Equal(t, http.StatusCreated, do(e, "user-1").Code)

		rec := do(e, "user-1")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("クライアントごとに独立して制限する", func(t *testing.T) {
		rl := NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 1})
		e := newEcho(rl)

		assert.Equal(t, http.StatusCreated, do(e, "user-1").Code)
		assert.Equal(t, http.StatusTooManyRequests, do(e, "user-1").Code)
		assert.Equal(t, http.StatusCreated, do(e, "user-2").Code)
		assert.Equal(t, http.StatusCreated, do(e, "").Code)
	})

	t.Run("アクセスのないクライアントは破棄される", func(t *testing.T) {
		rl := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
		now := time.Now()
		rl.now = func() time.Time { return now }

		require.True(t, rl.allow("old"))
		now = now.Add(visitorTTL + time.Second)
		require.True(t, rl.allow("new"))

		rl.mu.Lock()
		defer rl.mu.Unlock()
		assert.NotContains(t, rl.visitors, "old")
		assert.Contains(t, rl.visitors, "new")
	})

	t.Run("不正な設定は最小値に補正される", func(t *testing.T) {
		rl := NewRateLimiter(config.RateLimitConfig{})
		assert.Equal(t, rate.Limit(1), rl.limit)
		assert.Equal(t, 1, rl.burst)
	})
}
