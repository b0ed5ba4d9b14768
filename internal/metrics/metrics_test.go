package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	before := counterValue(t, httpRequests.WithLabelValues("test_endpoint"))
	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
	})
	assert.Equal(t, before+1, counterValue(t, httpRequests.WithLabelValues("test_endpoint")))
}

func TestObserveSlots(t *testing.T) {
	before := counterValue(t, slotRequests.WithLabelValues(SourceCache))

	ObserveSlots(SourceCache, 12)
	ObserveSlots(SourceGenerated, 0)

	assert.Equal(t, before+1, counterValue(t, slotRequests.WithLabelValues(SourceCache)))

	m := &dto.Metric{}
	require.NoError(t, slotsReturned.Write(m))
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(2))
}

func TestIncResolutionFailure(t *testing.T) {
	before := counterValue(t, resolutionFailures)
	IncResolutionFailure()
	assert.Equal(t, before+1, counterValue(t, resolutionFailures))
}

func TestIncGRPC(t *testing.T) {
	c := grpcRequests.WithLabelValues("/servicehours.slots.v1.SlotService/GetSlots", "OK")
	before := counterValue(t, c)
	IncGRPC("/servicehours.slots.v1.SlotService/GetSlots", "OK")
	assert.Equal(t, before+1, counterValue(t, c))
}
