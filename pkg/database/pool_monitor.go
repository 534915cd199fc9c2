package database

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PoolStats 连接池快照，用于健康检查响应
type PoolStats struct {
	Driver          string `json:"driver"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
}

// HealthCheck 健康检查，nil 句柄（memory 驱动）视为健康
func (h *Handle) HealthCheck(ctx context.Context) (*PoolStats, error) {
	if h == nil || h.SQLX == nil {
		return &PoolStats{Driver: DriverMemory}, nil
	}

	// 测试连接
	if err := h.SQLX.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	stats := h.SQLX.Stats()
	return &PoolStats{
		Driver:          h.Driver,
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		WaitCount:       stats.WaitCount,
	}, nil
}

// RegisterPoolMetrics 将连接池指标注册到给定 Registry
func (h *Handle) RegisterPoolMetrics(reg prometheus.Registerer) error {
	if h == nil || h.SQLX == nil {
		return nil
	}
	return reg.Register(collectors.NewDBStatsCollector(h.SQLX.DB, "karmafeed_"+h.Driver))
}
