package repository

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"karmafeed/internal/domain/feed/model"
	"karmafeed/pkg/database"
	"karmafeed/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) (*database.Handle, FeedRepository) {
	t.Helper()
	h, err := database.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(h.Gorm))
	t.Cleanup(func() { _ = h.Close() })
	return h, NewFeedRepository(h.Gorm)
}

// repoFactories 两种实现跑同一组用例
func repoFactories() map[string]func(t *testing.T) FeedRepository {
	return map[string]func(t *testing.T) FeedRepository{
		"gorm": func(t *testing.T) FeedRepository {
			_, repo := setupSQLite(t)
			return repo
		},
		"memory": func(t *testing.T) FeedRepository {
			return NewMemoryRepository()
		},
	}
}

func TestPostsAndComments(t *testing.T) {
	for name, newRepo := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			p1 := &model.Post{Author: "alice", Content: "first"}
			p2 := &model.Post{Author: "bob", Content: "second"}
			require.NoError(t, repo.CreatePost(ctx, p1))
			require.NoError(t, repo.CreatePost(ctx, p2))
			assert.NotZero(t, p1.ID)
			assert.NotEqual(t, p1.ID, p2.ID)

			got, err := repo.GetPost(ctx, p1.ID)
			require.NoError(t, err)
			assert.Equal(t, "first", got.Content)

			_, err = repo.GetPost(ctx, 9999)
			assert.ErrorIs(t, err, errs.ErrNotFound)

			posts, total, err := repo.ListPosts(ctx, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(2), total)
			require.Len(t, posts, 2)

			posts, total, err = repo.ListPosts(ctx, 10, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(2), total)
			assert.Empty(t, posts)

			c1 := &model.Comment{PostID: p1.ID, Author: "bob", Content: "hi"}
			require.NoError(t, repo.CreateComment(ctx, c1))
			c2 := &model.Comment{PostID: p1.ID, ParentID: &c1.ID, Author: "alice", Content: "hey", Depth: 1}
			require.NoError(t, repo.CreateComment(ctx, c2))

			comments, err := repo.ListComments(ctx, p1.ID)
			require.NoError(t, err)
			require.Len(t, comments, 2)
			assert.Equal(t, c1.ID, comments[0].ID)
			require.NotNil(t, comments[1].ParentID)
			assert.Equal(t, c1.ID, *comments[1].ParentID)
			assert.Equal(t, 1, comments[1].Depth)

			counts, err := repo.CountComments(ctx, []uint64{p1.ID, p2.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), counts[p1.ID])
			assert.Equal(t, int64(0), counts[p2.ID])

			_, err = repo.GetComment(ctx, 9999)
			assert.ErrorIs(t, err, errs.ErrNotFound)
		})
	}
}

func TestToggleLike(t *testing.T) {
	for name, newRepo := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			post := &model.Post{Author: "alice", Content: "hello"}
			require.NoError(t, repo.CreatePost(ctx, post))
			target := model.Target{Type: model.TargetPost, ID: post.ID}

			liked, count, err := repo.ToggleLike(ctx, "bob", target, nil)
			require.NoError(t, err)
			assert.True(t, liked)
			assert.Equal(t, int64(1), count)

			liked, count, err = repo.ToggleLike(ctx, "carol", target, nil)
			require.NoError(t, err)
			assert.True(t, liked)
			assert.Equal(t, int64(2), count)

			likedBy, err := repo.LikedBy(ctx, "bob", model.TargetPost, []uint64{post.ID})
			require.NoError(t, err)
			assert.True(t, likedBy[post.ID])

			liked, count, err = repo.ToggleLike(ctx, "bob", target, nil)
			require.NoError(t, err)
			assert.False(t, liked)
			assert.Equal(t, int64(1), count)

			likedBy, err = repo.LikedBy(ctx, "bob", model.TargetPost, []uint64{post.ID})
			require.NoError(t, err)
			assert.False(t, likedBy[post.ID])

			likes, err := repo.CountLikes(ctx, model.TargetPost, []uint64{post.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), likes[post.ID])

			_, _, err = repo.ToggleLike(ctx, "bob", model.Target{Type: model.TargetComment, ID: 42}, nil)
			assert.ErrorIs(t, err, errs.ErrNotFound)

			_, _, err = repo.ToggleLike(ctx, "bob", model.Target{Type: "story", ID: post.ID}, nil)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

// guard 只在新增点赞时调用，取消点赞不受其影响
func TestToggleLikeGuard(t *testing.T) {
	for name, newRepo := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			post := &model.Post{Author: "alice", Content: "hello"}
			require.NoError(t, repo.CreatePost(ctx, post))
			target := model.Target{Type: model.TargetPost, ID: post.ID}

			var seen []string
			reject := func(author string) error {
				seen = append(seen, author)
				return errs.Validation("no")
			}

			_, _, err := repo.ToggleLike(ctx, "bob", target, reject)
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Equal(t, []string{"alice"}, seen)

			likes, err := repo.CountLikes(ctx, model.TargetPost, []uint64{post.ID})
			require.NoError(t, err)
			assert.Zero(t, likes[post.ID])

			liked, _, err := repo.ToggleLike(ctx, "bob", target, nil)
			require.NoError(t, err)
			assert.True(t, liked)

			liked, count, err := repo.ToggleLike(ctx, "bob", target, reject)
			require.NoError(t, err)
			assert.False(t, liked)
			assert.Equal(t, int64(0), count)
			assert.Len(t, seen, 1)
		})
	}
}

// 同一用户对同一目标并发切换 N 次，最终状态只取决于 N 的奇偶
func TestToggleLikeConcurrentParity(t *testing.T) {
	for name, newRepo := range repoFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			post := &model.Post{Author: "alice", Content: "hello"}
			require.NoError(t, repo.CreatePost(ctx, post))
			target := model.Target{Type: model.TargetPost, ID: post.ID}

			const n = 50
			var wg sync.WaitGroup
			errCh := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, _, err := repo.ToggleLike(ctx, "bob", target, nil); err != nil {
						errCh <- err
					}
				}()
			}
			wg.Wait()
			close(errCh)
			for err := range errCh {
				t.Fatalf("toggle failed: %v", err)
			}

			likes, err := repo.CountLikes(ctx, model.TargetPost, []uint64{post.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(0), likes[post.ID])

			// 再切换一次为奇数次
			liked, count, err := repo.ToggleLike(ctx, "bob", target, nil)
			require.NoError(t, err)
			assert.True(t, liked)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestKarmaTotals(t *testing.T) {
	ctx := context.Background()
	h, repo := setupSQLite(t)
	mem := NewMemoryRepository()

	sources := map[string]struct {
		repo   FeedRepository
		source KarmaSource
	}{
		"sqlx":   {repo: repo, source: NewKarmaQuery(h.SQLX)},
		"memory": {repo: mem, source: mem},
	}

	for name, s := range sources {
		t.Run(name, func(t *testing.T) {
			post := &model.Post{Author: "alice", Content: "hello"}
			require.NoError(t, s.repo.CreatePost(ctx, post))
			comment := &model.Comment{PostID: post.ID, Author: "bob", Content: "nice"}
			require.NoError(t, s.repo.CreateComment(ctx, comment))

			for _, u := range []string{"bob", "carol"} {
				_, _, err := s.repo.ToggleLike(ctx, u, model.Target{Type: model.TargetPost, ID: post.ID}, nil)
				require.NoError(t, err)
			}
			_, _, err := s.repo.ToggleLike(ctx, "alice", model.Target{Type: model.TargetComment, ID: comment.ID}, nil)
			require.NoError(t, err)

			totals, err := s.source.KarmaTotals(ctx, model.KarmaQuery{PostPoints: 5, CommentPoints: 1})
			require.NoError(t, err)
			sort.Slice(totals, func(i, j int) bool { return totals[i].Username < totals[j].Username })
			assert.Equal(t, []model.KarmaTotal{
				{Username: "alice", Karma: 10},
				{Username: "bob", Karma: 1},
			}, totals)

			totals, err = s.source.KarmaTotals(ctx, model.KarmaQuery{
				PostPoints:    5,
				CommentPoints: 1,
				Since:         time.Now().Add(time.Hour),
			})
			require.NoError(t, err)
			assert.Empty(t, totals)

			totals, err = s.source.KarmaTotals(ctx, model.KarmaQuery{
				PostPoints:    5,
				CommentPoints: 1,
				Since:         time.Now().Add(-time.Hour),
			})
			require.NoError(t, err)
			assert.Len(t, totals, 2)
		})
	}
}

func TestMemoryKarmaWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	now := base
	repo.SetClock(func() time.Time { return now })

	post := &model.Post{Author: "alice", Content: "hello"}
	require.NoError(t, repo.CreatePost(ctx, post))
	_, _, err := repo.ToggleLike(ctx, "bob", model.Target{Type: model.TargetPost, ID: post.ID}, nil)
	require.NoError(t, err)

	now = base.Add(2 * time.Hour)
	repo.SetClock(func() time.Time { return now })
	_, _, err = repo.ToggleLike(ctx, "carol", model.Target{Type: model.TargetPost, ID: post.ID}, nil)
	require.NoError(t, err)

	totals, err := repo.KarmaTotals(ctx, model.KarmaQuery{PostPoints: 5, CommentPoints: 1, Since: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, []model.KarmaTotal{{Username: "alice", Karma: 5}}, totals)
}
