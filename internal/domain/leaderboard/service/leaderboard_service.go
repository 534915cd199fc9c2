package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	feedModel "karmafeed/internal/domain/feed/model"
	"karmafeed/internal/domain/leaderboard/model"
	"karmafeed/pkg/cache"
	"karmafeed/pkg/logger"
	"karmafeed/pkg/metrics"

	"go.uber.org/zap"
)

// 默认配置
const (
	DefaultRefreshInterval   = 120 * time.Second
	DefaultRefreshTimeout    = 10 * time.Second
	DefaultTopN              = 5
	DefaultPostLikePoints    = 5
	DefaultCommentLikePoints = 1

	snapshotKey = "leaderboard:snapshot"
)

// State 排行榜快照状态
// Stale -> Refreshing -> Fresh -> (过期) -> Stale
type State int

const (
	StateStale State = iota
	StateRefreshing
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateRefreshing:
		return "refreshing"
	case StateFresh:
		return "fresh"
	default:
		return "stale"
	}
}

// Clock 时间来源，测试中可替换
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// KarmaSource 积分数据源
type KarmaSource interface {
	KarmaTotals(ctx context.Context, q feedModel.KarmaQuery) ([]feedModel.KarmaTotal, error)
}

// Options 排行榜配置
type Options struct {
	RefreshInterval   time.Duration
	RefreshTimeout    time.Duration
	TopN              int
	PostLikePoints    int64
	CommentLikePoints int64
	// Window 只统计该时间段内的点赞，0 表示全部历史
	Window time.Duration
	Clock  Clock
}

// refreshCall 一次进行中的计算，期间到达的刷新请求共享其结果
type refreshCall struct {
	done    chan struct{}
	entries []model.Entry
	err     error
	waiters int
}

// Leaderboard 积分排行榜
type Leaderboard struct {
	source  KarmaSource
	cache   cache.CacheService
	opts    Options
	clock   Clock
	metrics *metrics.MetricsCollector
	log     *zap.Logger

	mu          sync.Mutex
	state       State
	entries     []model.Entry
	refreshedAt time.Time
	call        *refreshCall
}

// NewLeaderboard 创建排行榜，cacheService 可以为 nil
func NewLeaderboard(source KarmaSource, cacheService cache.CacheService, opts Options, m *metrics.MetricsCollector) *Leaderboard {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.PostLikePoints == 0 && opts.CommentLikePoints == 0 {
		opts.PostLikePoints = DefaultPostLikePoints
		opts.CommentLikePoints = DefaultCommentLikePoints
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if m == nil {
		m = metrics.GetGlobalCollector()
	}
	return &Leaderboard{
		source:  source,
		cache:   cacheService,
		opts:    opts,
		clock:   opts.Clock,
		metrics: m,
		log:     logger.Named("leaderboard"),
		state:   StateStale,
	}
}

// State 返回当前状态，Fresh 超过刷新间隔后视为 Stale
func (l *Leaderboard) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

func (l *Leaderboard) stateLocked() State {
	if l.state == StateFresh && !l.clock.Now().Before(l.refreshedAt.Add(l.opts.RefreshInterval)) {
		l.state = StateStale
	}
	return l.state
}

// TopN 默认返回条数
func (l *Leaderboard) TopN() int {
	return l.opts.TopN
}

// GetTop 返回积分前 n 名，n <= 0 时使用默认值
// 快照新鲜时直接返回；正在刷新且已有旧快照时返回旧快照；否则同步等待一次刷新
func (l *Leaderboard) GetTop(ctx context.Context, n int) ([]model.Entry, error) {
	if n <= 0 {
		n = l.opts.TopN
	}

	l.mu.Lock()
	state := l.stateLocked()
	if state == StateFresh || (state == StateRefreshing && l.entries != nil) {
		entries := top(l.entries, n)
		l.mu.Unlock()
		return entries, nil
	}
	call := l.startLocked()
	l.mu.Unlock()

	entries, err := l.wait(ctx, call)
	if err != nil {
		return nil, err
	}
	return top(entries, n), nil
}

// Refresh 立即重新计算并返回前 n 名；已有计算进行中时加入该计算
func (l *Leaderboard) Refresh(ctx context.Context, n int) ([]model.Entry, error) {
	if n <= 0 {
		n = l.opts.TopN
	}

	l.mu.Lock()
	call := l.startLocked()
	l.mu.Unlock()

	entries, err := l.wait(ctx, call)
	if err != nil {
		return nil, err
	}
	return top(entries, n), nil
}

// Warm 从缓存恢复其他实例写入的快照，仍在有效期内则直接进入 Fresh
func (l *Leaderboard) Warm(ctx context.Context) bool {
	if l.cache == nil {
		return false
	}

	var snap model.Snapshot
	if err := l.cache.Get(ctx, snapshotKey, &snap); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.log.Warn("load leaderboard snapshot failed", zap.Error(err))
		}
		l.metrics.RecordCacheOperation("leaderboard_get", false)
		return false
	}
	l.metrics.RecordCacheOperation("leaderboard_get", true)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateRefreshing || !l.clock.Now().Before(snap.RefreshedAt.Add(l.opts.RefreshInterval)) {
		return false
	}
	l.entries = snap.Entries
	l.refreshedAt = snap.RefreshedAt
	l.state = StateFresh
	return true
}

// Run 按刷新间隔周期性重算，ctx 取消后返回
func (l *Leaderboard) Run(ctx context.Context) {
	if !l.Warm(ctx) {
		if _, err := l.Refresh(ctx, 0); err != nil && ctx.Err() == nil {
			l.log.Error("initial leaderboard refresh failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(l.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := l.Refresh(ctx, 0); err != nil && ctx.Err() == nil {
				l.log.Error("scheduled leaderboard refresh failed", zap.Error(err))
			}
		}
	}
}

// startLocked 加入进行中的计算或启动新的计算，调用方需持有 l.mu
func (l *Leaderboard) startLocked() *refreshCall {
	if l.call != nil {
		l.call.waiters++
		l.metrics.RecordLeaderboardJoin()
		return l.call
	}

	call := &refreshCall{done: make(chan struct{})}
	l.call = call
	l.state = StateRefreshing
	go l.compute(call)
	return call
}

// compute 使用独立的 context，单个调用方取消不会中断共享的计算
func (l *Leaderboard) compute(call *refreshCall) {
	ctx, cancel := context.WithTimeout(context.Background(), l.opts.RefreshTimeout)
	defer cancel()

	start := time.Now()
	q := feedModel.KarmaQuery{
		PostPoints:    l.opts.PostLikePoints,
		CommentPoints: l.opts.CommentLikePoints,
	}
	if l.opts.Window > 0 {
		q.Since = l.clock.Now().Add(-l.opts.Window)
	}

	totals, err := l.source.KarmaTotals(ctx, q)
	var entries []model.Entry
	if err == nil {
		entries = rank(totals)
	}
	l.metrics.RecordLeaderboardRefresh(time.Since(start), err)

	now := l.clock.Now()
	// 缓存写入完成后才唤醒等待者
	if err == nil && l.cache != nil {
		snap := model.Snapshot{Entries: entries, RefreshedAt: now}
		if cerr := l.cache.Set(ctx, snapshotKey, snap, l.opts.RefreshInterval); cerr != nil {
			l.log.Warn("store leaderboard snapshot failed", zap.Error(cerr))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		l.entries = entries
		l.refreshedAt = now
		l.state = StateFresh
	} else {
		// 失败时保留旧快照，按其原有时间判断新鲜度
		l.state = StateFresh
		if l.entries == nil {
			l.state = StateStale
		}
		l.stateLocked()
		l.log.Error("leaderboard refresh failed", zap.Error(err))
	}
	call.entries, call.err = entries, err
	l.call = nil
	close(call.done)
}

func (l *Leaderboard) wait(ctx context.Context, call *refreshCall) ([]model.Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.done:
		return call.entries, call.err
	}
}

// waiting 返回加入当前计算的调用方数量，测试用
func (l *Leaderboard) waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.call == nil {
		return 0
	}
	return l.call.waiters
}

// rank 按积分降序、用户名升序排列
func rank(totals []feedModel.KarmaTotal) []model.Entry {
	entries := make([]model.Entry, 0, len(totals))
	for _, t := range totals {
		entries = append(entries, model.Entry{Username: t.Username, Karma: t.Karma})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Karma != entries[j].Karma {
			return entries[i].Karma > entries[j].Karma
		}
		return entries[i].Username < entries[j].Username
	})
	return entries
}

func top(entries []model.Entry, n int) []model.Entry {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]model.Entry, n)
	copy(out, entries[:n])
	return out
}
