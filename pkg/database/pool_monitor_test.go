package database

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		var h *Handle
		stats, err := h.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DriverMemory, stats.Driver)
		assert.NoError(t, h.RegisterPoolMetrics(prometheus.NewRegistry()))
	})

	t.Run("sqlite", func(t *testing.T) {
		h, err := OpenSQLite(":memory:", false)
		require.NoError(t, err)
		defer h.Close()

		stats, err := h.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, stats.Driver)
		assert.Equal(t, 1, stats.OpenConnections)

		reg := prometheus.NewRegistry()
		require.NoError(t, h.RegisterPoolMetrics(reg))
		families, err := reg.Gather()
		require.NoError(t, err)
		assert.NotEmpty(t, families)
	})

	t.Run("closed", func(t *testing.T) {
		h, err := OpenSQLite(":memory:", false)
		require.NoError(t, err)
		require.NoError(t, h.Close())

		_, err = h.HealthCheck(context.Background())
		assert.Error(t, err)
	})
}
