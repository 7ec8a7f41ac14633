package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.DonationsAcceptedTotal.WithLabelValues("JPY").Inc()
	m.DonationsAcceptedTotal.WithLabelValues("JPY").Inc()
	m.DonationsAmountTotal.Add(6.5)
	m.RateRefreshesTotal.WithLabelValues("failure").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DonationsAcceptedTotal.WithLabelValues("JPY")))
	assert.Equal(t, 6.5, testutil.ToFloat64(m.DonationsAmountTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateRefreshesTotal.WithLabelValues("failure")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetricsTwiceOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNopMetrics()
		NewNopMetrics()
	})
}
