package repository

import (
	"context"
	"errors"
	"fmt"

	"karmafeed/internal/domain/feed/model"
	"karmafeed/pkg/database"
	"karmafeed/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedRepository 帖子、评论、点赞的存储接口
type FeedRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	ListPosts(ctx context.Context, offset, limit int) ([]model.Post, int64, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id uint64) (*model.Comment, error)
	// ListComments 一次取出帖子下全部评论，按 created_at, id 升序
	ListComments(ctx context.Context, postID uint64) ([]model.Comment, error)
	CountComments(ctx context.Context, postIDs []uint64) (map[uint64]int64, error)

	// ToggleLike 原子地切换点赞状态，返回切换后是否已点赞及最新点赞数
	// guard 仅在本次切换会新增点赞时以目标作者调用，返回错误则放弃插入；取消点赞不经过 guard
	ToggleLike(ctx context.Context, username string, target model.Target, guard LikeGuard) (bool, int64, error)
	CountLikes(ctx context.Context, targetType model.TargetType, ids []uint64) (map[uint64]int64, error)
	LikedBy(ctx context.Context, username string, targetType model.TargetType, ids []uint64) (map[uint64]bool, error)
}

// LikeGuard 新增点赞前的业务校验，参数为目标作者
type LikeGuard func(author string) error

type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository 创建基于 gorm 的仓库
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

// AutoMigrate 开发环境建表，生产环境使用 migrations/ 下的 golang-migrate 脚本
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Post{}, &model.Comment{}, &model.Like{})
}

// --- Post ---

func (r *feedRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *feedRepository) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&post).Error; err != nil {
		return nil, notFound(err, "post %d does not exist", id)
	}
	return &post, nil
}

func (r *feedRepository) ListPosts(ctx context.Context, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	if err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// --- Comment ---

func (r *feedRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *feedRepository) GetComment(ctx context.Context, id uint64) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&comment).Error; err != nil {
		return nil, notFound(err, "comment %d does not exist", id)
	}
	return &comment, nil
}

func (r *feedRepository) ListComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at asc").Order("id asc").
		Find(&comments).Error
	return comments, err
}

type countRow struct {
	ID    uint64
	Total int64
}

func (r *feedRepository) CountComments(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("post_id AS id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Total
	}
	return counts, nil
}

// --- Like ---

// ToggleLike 在同一事务内：锁定目标行 -> 删除已有点赞 -> 不存在则校验并插入 -> 统计点赞数
// 目标行上的 FOR NO KEY UPDATE 锁是同一目标所有切换请求的串行化点；
// 它与评论插入时外键检查持有的 FOR KEY SHARE 不冲突，点赞不会阻塞对同一帖子/评论的回复
func (r *feedRepository) ToggleLike(ctx context.Context, username string, target model.Target, guard LikeGuard) (bool, int64, error) {
	var liked bool
	var count int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := lockTarget(tx, target)
		if err != nil {
			return err
		}

		res := tx.Where("username = ? AND target_type = ? AND target_id = ?", username, target.Type, target.ID).
			Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			if guard != nil {
				if err := guard(author); err != nil {
					return err
				}
			}
			like := &model.Like{Username: username, TargetType: target.Type, TargetID: target.ID}
			if err := tx.Create(like).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return errs.Conflict("concurrent like on %s %d", target.Type, target.ID)
				}
				return err
			}
			liked = true
		}

		return tx.Model(&model.Like{}).
			Where("target_type = ? AND target_id = ?", target.Type, target.ID).
			Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *feedRepository) CountLikes(ctx context.Context, targetType model.TargetType, ids []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Select("target_id AS id, COUNT(*) AS total").
		Where("target_type = ? AND target_id IN ?", targetType, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Total
	}
	return counts, nil
}

func (r *feedRepository) LikedBy(ctx context.Context, username string, targetType model.TargetType, ids []uint64) (map[uint64]bool, error) {
	liked := make(map[uint64]bool, len(ids))
	if username == "" || len(ids) == 0 {
		return liked, nil
	}

	var targetIDs []uint64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("username = ? AND target_type = ? AND target_id IN ?", username, targetType, ids).
		Pluck("target_id", &targetIDs).Error
	if err != nil {
		return nil, err
	}
	for _, id := range targetIDs {
		liked[id] = true
	}
	return liked, nil
}

// lockTarget 锁定目标行并返回其作者；SQLite 忽略行锁子句，依赖库级写锁串行化
func lockTarget(db *gorm.DB, target model.Target) (string, error) {
	db = db.Clauses(clause.Locking{Strength: "NO KEY UPDATE"})

	var author string
	var err error
	switch target.Type {
	case model.TargetPost:
		var post model.Post
		err = db.Select("id", "author").Where("id = ?", target.ID).Take(&post).Error
		author = post.Author
	case model.TargetComment:
		var comment model.Comment
		err = db.Select("id", "author").Where("id = ?", target.ID).Take(&comment).Error
		author = comment.Author
	default:
		return "", errs.Validation("unknown target type %q", target.Type)
	}
	if err != nil {
		return "", notFound(err, "%s %d does not exist", target.Type, target.ID)
	}
	return author, nil
}

// notFound 将 gorm.ErrRecordNotFound 转换为 errs.ErrNotFound，其他错误原样返回
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(format, args...)
	}
	return fmt.Errorf("query failed: %w", err)
}
