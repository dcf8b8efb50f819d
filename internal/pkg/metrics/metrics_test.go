package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.ReservationsTotal)
	assert.NotNil(t, m.LockWaitDuration)
	assert.NotNil(t, m.SettlementsTotal)
	assert.NotNil(t, m.ReservationTransitionsTotal)
	assert.NotNil(t, m.NotificationsTotal)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/rooms", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestRecordReservation(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.RecordReservation("success")
	m.RecordReservation("success")
	m.RecordReservation("unavailable")
	m.RecordReservation("lock_timeout")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("lock_timeout")))
}

func TestRecordLockWait(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.RecordLockWait("acquired", 2*time.Millisecond)
	m.RecordLockWait("timeout", 10*time.Second)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "reservation_lock_wait_seconds" {
			found = true
			assert.Equal(t, 2, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "reservation_lock_wait_seconds metric not found")
}

func TestRecordSettlementAndTransition(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.RecordSettlement("succeeded")
	m.RecordSettlement("failed")
	m.RecordTransition("confirmed")
	m.RecordTransition("cancelled")
	m.RecordTransition("cancelled")
	m.RecordNotification("confirmed", "sent")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationTransitionsTotal.WithLabelValues("cancelled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("confirmed", "sent")))
}

func TestRecord_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordReservation("success")
		m.RecordLockWait("acquired", time.Millisecond)
		m.RecordSettlement("failed")
		m.RecordTransition("confirmed")
		m.RecordNotification("cancelled", "failed")
	})
}

func TestHTTPRequestDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestDuration.WithLabelValues("GET", "/api/v1/availability").Observe(0.025)
	m.HTTPRequestDuration.WithLabelValues("POST", "/api/v1/reservations").Observe(0.150)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_request_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "http_request_duration_seconds metric not found")
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initはデフォルトレジストリに登録するため、テストでは直接セット
	m := NewWithRegistry(prometheus.NewRegistry())
	defaultMetrics = m

	assert.Equal(t, m, Get())
}
