package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Observe("page", time.Now(), "")
	m.Observe("page", time.Now(), "query_failed")
	m.Observe("row", time.Now(), "")

	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("page", "query_failed")))

	_, err = New(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("page", time.Now(), "x") })
}
