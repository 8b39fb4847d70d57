package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]int {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]int)
	for _, f := range families {
		names[f.GetName()] = len(f.GetMetric())
	}
	return names
}

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.BookingsTotal)
	assert.NotNil(t, m.AvailabilityProbesTotal)
	assert.NotNil(t, m.GatewayRequestDuration)
	assert.NotNil(t, m.ActiveSessions)
}

func TestBookingsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("validation_failed").Inc()
	m.BookingsTotal.WithLabelValues("gateway_error").Inc()

	names := gatherNames(t, reg)
	assert.Equal(t, 3, names["bookings_total"])
}

func TestAvailabilityProbesTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.AvailabilityProbesTotal.WithLabelValues("available").Inc()
	m.AvailabilityProbesTotal.WithLabelValues("unavailable").Inc()
	m.AvailabilityProbesTotal.WithLabelValues("snapshot_hit").Inc()

	names := gatherNames(t, reg)
	assert.Equal(t, 3, names["availability_probes_total"])
}

func TestGatewayRequestDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.GatewayRequestDuration.WithLabelValues("get_time_slots", "success").Observe(0.02)
	m.GatewayRequestDuration.WithLabelValues("create_booking", "failed").Observe(0.5)

	names := gatherNames(t, reg)
	_, found := names["gateway_request_duration_seconds"]
	assert.True(t, found, "gateway_request_duration_seconds metric not found")
}

func TestActiveSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ActiveSessions.Inc()
	m.ActiveSessions.Inc()
	m.ActiveSessions.Dec()

	names := gatherNames(t, reg)
	_, found := names["active_sessions"]
	assert.True(t, found, "active_sessions metric not found")
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/sessions/:id", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/sessions/:id/booking", "201").Inc()
	m.HTTPRequestDuration.WithLabelValues("GET", "/api/v1/sessions/:id").Observe(0.01)

	names := gatherNames(t, reg)
	assert.Equal(t, 2, names["http_requests_total"])
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	// 既存のdefaultMetricsをバックアップ
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// 注意: Initを呼ぶとデフォルトレジストリに登録するため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	got := Get()
	assert.NotNil(t, got)
	assert.Equal(t, m, got)
}
