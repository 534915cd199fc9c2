package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Names []string  `json:"names"`
	At    time.Time `json:"at"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	t.Run("miss on empty cache", func(t *testing.T) {
		var got snapshot
		assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrCacheMiss)
	})

	t.Run("set then get round trips through json", func(t *testing.T) {
		in := snapshot{Names: []string{"alice", "bob"}, At: now}
		require.NoError(t, c.Set(ctx, "k", in, time.Minute))

		var out snapshot
		require.NoError(t, c.Get(ctx, "k", &out))
		assert.Equal(t, in.Names, out.Names)
		assert.True(t, in.At.Equal(out.At))
	})

	t.Run("expired items miss", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", snapshot{}, time.Second))
		now = now.Add(2 * time.Second)

		var out snapshot
		assert.ErrorIs(t, c.Get(ctx, "short", &out), ErrCacheMiss)
	})

	t.Run("expired items are swept on the next write", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "fresh", snapshot{}, 0))

		c.mu.RLock()
		_, stillThere := c.data["short"]
		_, kept := c.data["fresh"]
		c.mu.RUnlock()
		assert.False(t, stillThere)
		assert.True(t, kept)
	})
}
