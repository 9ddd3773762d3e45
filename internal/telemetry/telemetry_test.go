package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_withDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	require.Equal(t, "inspect-server", cfg.ServiceName)
	require.Equal(t, 10*time.Second, cfg.MetricInterval)

	cfg = Config{ServiceName: "api", MetricInterval: time.Minute}.withDefaults()
	require.Equal(t, "api", cfg.ServiceName)
	require.Equal(t, time.Minute, cfg.MetricInterval)
}

func TestConfig_sampler(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		contains string
	}{
		{name: "keep all", ratio: 1, contains: "AlwaysOnSampler"},
		{name: "above one", ratio: 2, contains: "AlwaysOnSampler"},
		{name: "none", ratio: 0, contains: "AlwaysOffSampler"},
		{name: "quarter", ratio: 0.25, contains: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, Config{SampleRatio: tt.ratio}.sampler().Description(), tt.contains)
		})
	}
}

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	require.Same(t, m, GetMetrics())
}
