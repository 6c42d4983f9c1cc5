package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := New()
	r.RateRefreshes.WithLabelValues("ok").Inc()
	r.RateRefreshes.WithLabelValues("ok").Inc()
	r.BootstrapInserts.WithLabelValues("user").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RateRefreshes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.BootstrapInserts.WithLabelValues("user")))

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["bank_rate_refreshes_total"])
	assert.True(t, names["bank_bootstrap_inserts_total"])
}
