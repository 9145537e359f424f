package metrics

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FillsTotal.WithLabelValues("ABC").Add(3)
	m.RestingOrders.WithLabelValues("ABC").Set(7)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.FillsTotal.WithLabelValues("ABC")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.RestingOrders.WithLabelValues("ABC")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2, "only touched vectors are exported")

	assert.Panics(t, func() { New(reg) }, "double registration on one registry")
}

func TestGauge(t *testing.T) {
	assert.True(t, math.IsNaN(Gauge(decimal.NullDecimal{})))
	assert.Equal(t, 101.25, Gauge(decimal.NullDecimal{Decimal: decimal.RequireFromString("101.25"), Valid: true}))
}
