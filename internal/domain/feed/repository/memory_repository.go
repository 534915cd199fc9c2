package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"karmafeed/internal/domain/feed/model"
	"karmafeed/pkg/errs"
)

// MemoryRepository 内存实现（用于开发/测试）
// 单个读写锁保护全部状态，ToggleLike 在写锁内完成读-改-写
type MemoryRepository struct {
	mu sync.RWMutex

	posts    map[uint64]*model.Post
	comments map[uint64]*model.Comment
	likes    map[model.Target]map[string]time.Time

	postSeq    uint64
	commentSeq uint64

	now func() time.Time
}

// NewMemoryRepository 创建内存仓库
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:    make(map[uint64]*model.Post),
		comments: make(map[uint64]*model.Comment),
		likes:    make(map[model.Target]map[string]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) CreatePost(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.postSeq++
	post.ID = r.postSeq
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.now()
	}
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, errs.NotFound("post %d does not exist", id)
	}
	out := *post
	return &out, nil
}

func (r *MemoryRepository) ListPosts(ctx context.Context, offset, limit int) ([]model.Post, int64, error) {
	r.mu.RLock()
	all := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, *p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []model.Post{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *MemoryRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[comment.PostID]; !ok {
		return errs.NotFound("post %d does not exist", comment.PostID)
	}

	r.commentSeq++
	comment.ID = r.commentSeq
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.now()
	}
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetComment(ctx context.Context, id uint64) (*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, errs.NotFound("comment %d does not exist", id)
	}
	out := *comment
	return &out, nil
}

func (r *MemoryRepository) ListComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	r.mu.RLock()
	var out []model.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) CountComments(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[uint64]struct{}, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}
	counts := make(map[uint64]int64, len(postIDs))
	for _, c := range r.comments {
		if _, ok := wanted[c.PostID]; ok {
			counts[c.PostID]++
		}
	}
	return counts, nil
}

func (r *MemoryRepository) ToggleLike(ctx context.Context, username string, target model.Target, guard LikeGuard) (bool, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	author, err := r.authorLocked(target)
	if err != nil {
		return false, 0, err
	}

	likers := r.likes[target]
	if _, ok := likers[username]; ok {
		delete(likers, username)
		if len(likers) == 0 {
			delete(r.likes, target)
		}
		return false, int64(len(likers)), nil
	}

	if guard != nil {
		if err := guard(author); err != nil {
			return false, 0, err
		}
	}
	if likers == nil {
		likers = make(map[string]time.Time)
		r.likes[target] = likers
	}
	likers[username] = r.now()
	return true, int64(len(likers)), nil
}

func (r *MemoryRepository) CountLikes(ctx context.Context, targetType model.TargetType, ids []uint64) (map[uint64]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uint64]int64, len(ids))
	for _, id := range ids {
		if n := len(r.likes[model.Target{Type: targetType, ID: id}]); n > 0 {
			counts[id] = int64(n)
		}
	}
	return counts, nil
}

func (r *MemoryRepository) LikedBy(ctx context.Context, username string, targetType model.TargetType, ids []uint64) (map[uint64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	liked := make(map[uint64]bool, len(ids))
	if username == "" {
		return liked, nil
	}
	for _, id := range ids {
		if _, ok := r.likes[model.Target{Type: targetType, ID: id}][username]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

// KarmaTotals 与 KarmaQuery 语义一致的内存实现
func (r *MemoryRepository) KarmaTotals(ctx context.Context, q model.KarmaQuery) ([]model.KarmaTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sums := make(map[string]int64)
	for target, likers := range r.likes {
		author, err := r.authorLocked(target)
		if err != nil {
			continue
		}
		points := q.CommentPoints
		if target.Type == model.TargetPost {
			points = q.PostPoints
		}
		for _, likedAt := range likers {
			if !q.Since.IsZero() && likedAt.Before(q.Since) {
				continue
			}
			sums[author] += points
		}
	}

	totals := make([]model.KarmaTotal, 0, len(sums))
	for username, karma := range sums {
		totals = append(totals, model.KarmaTotal{Username: username, Karma: karma})
	}
	return totals, nil
}

// SetClock 替换时间来源，测试用
func (r *MemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryRepository) authorLocked(target model.Target) (string, error) {
	switch target.Type {
	case model.TargetPost:
		if p, ok := r.posts[target.ID]; ok {
			return p.Author, nil
		}
	case model.TargetComment:
		if c, ok := r.comments[target.ID]; ok {
			return c.Author, nil
		}
	default:
		return "", errs.Validation("unknown target type %q", target.Type)
	}
	return "", errs.NotFound("%s %d does not exist", target.Type, target.ID)
}
