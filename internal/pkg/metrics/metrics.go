package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の結果（status: success, unavailable, lock_timeout, error）
	ReservationsTotal *prometheus.CounterVec

	// 予約ロックの待ち時間（status: acquired, timeout）
	LockWaitDuration *prometheus.HistogramVec

	// 決済の結果（status: succeeded, failed）
	SettlementsTotal *prometheus.CounterVec

	// 予約の状態遷移（to）
	ReservationTransitionsTotal *prometheus.CounterVec

	// 外部通知（event, status: sent, failed）
	NotificationsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation attempts by outcome",
			},
			[]string{"status"},
		),
		LockWaitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reservation_lock_wait_seconds",
				Help:    "Time spent waiting for the per-room reservation lock",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"status"},
		),
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_settlements_total",
				Help: "Total number of payment settlements by outcome",
			},
			[]string{"status"},
		),
		ReservationTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_transitions_total",
				Help: "Total number of reservation status transitions",
			},
			[]string{"to"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_notifications_total",
				Help: "Total number of reservation notifications",
			},
			[]string{"event", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.LockWaitDuration,
		m.SettlementsTotal,
		m.ReservationTransitionsTotal,
		m.NotificationsTotal,
	)

	return m
}

// 以下の記録用メソッドは nil レシーバーでも安全に呼び出せる

// RecordReservation は予約作成の結果を記録する
func (m *Metrics) RecordReservation(status string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
}

// RecordLockWait はロック待ち時間を記録する
func (m *Metrics) RecordLockWait(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.LockWaitDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordSettlement は決済結果を記録する
func (m *Metrics) RecordSettlement(status string) {
	if m == nil {
		return
	}
	m.SettlementsTotal.WithLabelValues(status).Inc()
}

// RecordTransition は予約の状態遷移を記録する
func (m *Metrics) RecordTransition(to string) {
	if m == nil {
		return
	}
	m.ReservationTransitionsTotal.WithLabelValues(to).Inc()
}

// RecordNotification は通知の送信結果を記録する
func (m *Metrics) RecordNotification(event, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(event, status).Inc()
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
