package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordLikeToggle("post", "liked")
	m.RecordLikeToggle("post", "liked")
	m.RecordLikeToggle("comment", "unliked")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.likeTogglesTotal.WithLabelValues("post", "liked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.likeTogglesTotal.WithLabelValues("comment", "unliked")))

	m.RecordCommentCreated(false)
	m.RecordCommentCreated(true)
	m.RecordCommentCreated(true)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.commentsCreatedTotal.WithLabelValues("reply")))

	m.RecordLeaderboardRefresh(10*time.Millisecond, nil)
	m.RecordLeaderboardRefresh(time.Millisecond, errors.New("db down"))
	m.RecordLeaderboardJoin()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leaderboardRefreshTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leaderboardRefreshTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leaderboardJoinedTotal))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewMetricsCollector()
	b := NewMetricsCollector()

	a.RecordPostCreated()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.postsCreatedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.postsCreatedTotal))
	assert.Same(t, GetGlobalCollector(), GetGlobalCollector())
}
