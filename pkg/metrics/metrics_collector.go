package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 指标收集器
// 每个实例持有独立的 Registry，测试中可以重复创建而不冲突
type MetricsCollector struct {
	registry *prometheus.Registry

	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 业务指标
	likeTogglesTotal     *prometheus.CounterVec
	commentsCreatedTotal *prometheus.CounterVec
	postsCreatedTotal    prometheus.Counter

	// 排行榜指标
	leaderboardRefreshTotal    *prometheus.CounterVec
	leaderboardRefreshDuration prometheus.Histogram
	leaderboardJoinedTotal     prometheus.Counter

	// 缓存指标
	cacheOperationsTotal *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &MetricsCollector{
		registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		likeTogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_like_toggles_total",
				Help: "Like toggles by target type and resulting status",
			},
			[]string{"target_type", "status"},
		),

		commentsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_comments_created_total",
				Help: "Comments created, labelled top-level or reply",
			},
			[]string{"kind"},
		),

		postsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "feed_posts_created_total",
				Help: "Posts created",
			},
		),

		leaderboardRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaderboard_refresh_total",
				Help: "Leaderboard recomputations by outcome",
			},
			[]string{"outcome"},
		),

		leaderboardRefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leaderboard_refresh_duration_seconds",
				Help:    "Leaderboard recomputation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		leaderboardJoinedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leaderboard_refresh_joined_total",
				Help: "Refresh requests coalesced into an in-flight recomputation",
			},
		),

		cacheOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_operations_total",
				Help: "Cache operations by name and result",
			},
			[]string{"operation", "result"},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.likeTogglesTotal,
		m.commentsCreatedTotal,
		m.postsCreatedTotal,
		m.leaderboardRefreshTotal,
		m.leaderboardRefreshDuration,
		m.leaderboardJoinedTotal,
		m.cacheOperationsTotal,
	)
	return m
}

// Registry 返回底层 Registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLikeToggle 记录点赞切换
func (m *MetricsCollector) RecordLikeToggle(targetType, status string) {
	m.likeTogglesTotal.WithLabelValues(targetType, status).Inc()
}

// RecordCommentCreated 记录评论创建
func (m *MetricsCollector) RecordCommentCreated(reply bool) {
	kind := "top_level"
	if reply {
		kind = "reply"
	}
	m.commentsCreatedTotal.WithLabelValues(kind).Inc()
}

// RecordPostCreated 记录帖子创建
func (m *MetricsCollector) RecordPostCreated() {
	m.postsCreatedTotal.Inc()
}

// RecordLeaderboardRefresh 记录一次排行榜重算
func (m *MetricsCollector) RecordLeaderboardRefresh(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.leaderboardRefreshTotal.WithLabelValues(outcome).Inc()
	m.leaderboardRefreshDuration.Observe(duration.Seconds())
}

// RecordLeaderboardJoin 记录一次被合并的刷新请求
func (m *MetricsCollector) RecordLeaderboardJoin() {
	m.leaderboardJoinedTotal.Inc()
}

// RecordCacheOperation 记录缓存操作
func (m *MetricsCollector) RecordCacheOperation(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector()
	})
	return globalCollector
}
