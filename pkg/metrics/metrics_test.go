package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	r := prometheus.NewRegistry()
	Register(r)
	assert.Equal(t, prometheus.Registerer(r), GetRegisterer())

	SerdeOps.WithLabelValues(SerializeLabel, SuccessLabel).Inc()
	SerdeStrings.WithLabelValues(InternedLabel).Add(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(SerdeStrings.WithLabelValues(InternedLabel)))

	families, err := r.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "danmu_codec_serde_ops_total")
	assert.Contains(t, names, "danmu_codec_serde_strings_total")

	assert.Panics(t, func() { Register(r) })
}
