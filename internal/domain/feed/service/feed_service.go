package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"karmafeed/internal/domain/feed/model"
	"karmafeed/internal/domain/feed/repository"
	"karmafeed/pkg/errs"
	"karmafeed/pkg/logger"
	"karmafeed/pkg/metrics"
	"karmafeed/pkg/utils"

	"go.uber.org/zap"
)

// 默认限制
const (
	DefaultMaxContentLength = 500
	DefaultMaxDepth         = 3
)

// FeedService 帖子、评论树、点赞的业务接口
type FeedService interface {
	CreatePost(ctx context.Context, author, content string) (*model.PostView, error)
	ListPosts(ctx context.Context, viewer string, page, limit int) (*utils.PageResult, error)
	GetPost(ctx context.Context, viewer string, id uint64) (*model.PostView, error)

	AddComment(ctx context.Context, postID uint64, author, content string, parentID *uint64) (*model.CommentNode, error)
	GetCommentTree(ctx context.Context, viewer string, postID uint64) ([]*model.CommentNode, error)

	ToggleLike(ctx context.Context, username string, target model.Target) (*model.ToggleResult, error)
	CountFor(ctx context.Context, target model.Target) (int64, error)
	IsLikedBy(ctx context.Context, username string, target model.Target) (bool, error)
}

// Options 业务限制
type Options struct {
	MaxContentLength int
	MaxDepth         int
	AllowSelfLike    bool
}

type feedService struct {
	repo    repository.FeedRepository
	opts    Options
	metrics *metrics.MetricsCollector
	log     *zap.Logger
}

// NewFeedService 创建服务，m 为 nil 时使用全局指标收集器
func NewFeedService(repo repository.FeedRepository, opts Options, m *metrics.MetricsCollector) FeedService {
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = DefaultMaxContentLength
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if m == nil {
		m = metrics.GetGlobalCollector()
	}
	return &feedService{
		repo:    repo,
		opts:    opts,
		metrics: m,
		log:     logger.Named("feed"),
	}
}

// --- Post ---

func (s *feedService) CreatePost(ctx context.Context, author, content string) (*model.PostView, error) {
	if author == "" {
		return nil, errs.Authentication("login required")
	}
	text, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}

	post := &model.Post{Author: author, Content: text}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.metrics.RecordPostCreated()
	s.log.Debug("post created", zap.Uint64("post_id", post.ID), zap.String("author", author))

	return &model.PostView{
		ID:        post.ID,
		Author:    post.Author,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}, nil
}

func (s *feedService) ListPosts(ctx context.Context, viewer string, page, limit int) (*utils.PageResult, error) {
	p := utils.Pagination{Page: page, Limit: limit}
	offset, size := p.Normalize()

	posts, total, err := s.repo.ListPosts(ctx, offset, size)
	if err != nil {
		return nil, err
	}
	views, err := s.enrichPosts(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}

	return utils.NewPageResult(views, total, p), nil
}

func (s *feedService) GetPost(ctx context.Context, viewer string, id uint64) (*model.PostView, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.enrichPosts(ctx, viewer, []model.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// enrichPosts 批量补充点赞数、评论数和当前用户的点赞状态
func (s *feedService) enrichPosts(ctx context.Context, viewer string, posts []model.Post) ([]model.PostView, error) {
	views := make([]model.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]uint64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likes, err := s.repo.CountLikes(ctx, model.TargetPost, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.CountComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.repo.LikedBy(ctx, viewer, model.TargetPost, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		views = append(views, model.PostView{
			ID:            p.ID,
			Author:        p.Author,
			Content:       p.Content,
			CreatedAt:     p.CreatedAt,
			IsLiked:       liked[p.ID],
			LikeCount:     likes[p.ID],
			CommentsCount: comments[p.ID],
		})
	}
	return views, nil
}

// --- Comment ---

func (s *feedService) AddComment(ctx context.Context, postID uint64, author, content string, parentID *uint64) (*model.CommentNode, error) {
	if author == "" {
		return nil, errs.Authentication("login required")
	}
	text, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	depth := 0
	if parentID != nil {
		parent, err := s.repo.GetComment(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, errs.NotFound("comment %d does not exist on post %d", *parentID, postID)
		}
		depth = parent.Depth + 1
		if depth > s.opts.MaxDepth {
			return nil, errs.DepthExceeded("replies may be nested at most %d levels", s.opts.MaxDepth)
		}
	}

	comment := &model.Comment{
		PostID:   postID,
		ParentID: parentID,
		Author:   author,
		Content:  text,
		Depth:    depth,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.metrics.RecordCommentCreated(comment.IsReply())

	return newNode(comment, 0, false), nil
}

func (s *feedService) GetCommentTree(ctx context.Context, viewer string, postID uint64) ([]*model.CommentNode, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return make([]*model.CommentNode, 0), nil
	}

	ids := make([]uint64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	likes, err := s.repo.CountLikes(ctx, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.repo.LikedBy(ctx, viewer, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}

	return BuildTree(comments, likes, liked), nil
}

// --- Like ---

func (s *feedService) ToggleLike(ctx context.Context, username string, target model.Target) (*model.ToggleResult, error) {
	if username == "" {
		return nil, errs.Authentication("login required")
	}
	if !target.Type.Valid() {
		return nil, errs.Validation("unknown target type %q", target.Type)
	}

	var guard repository.LikeGuard
	if !s.opts.AllowSelfLike {
		guard = func(author string) error {
			if author == username {
				return errs.Validation("cannot like your own %s", target.Type)
			}
			return nil
		}
	}

	liked, count, err := s.repo.ToggleLike(ctx, username, target, guard)
	if err != nil {
		s.metrics.RecordLikeToggle(string(target.Type), "error")
		return nil, err
	}

	status := model.StatusUnliked
	if liked {
		status = model.StatusLiked
	}
	s.metrics.RecordLikeToggle(string(target.Type), string(status))

	return &model.ToggleResult{Status: status, LikeCount: count}, nil
}

func (s *feedService) CountFor(ctx context.Context, target model.Target) (int64, error) {
	if !target.Type.Valid() {
		return 0, errs.Validation("unknown target type %q", target.Type)
	}
	counts, err := s.repo.CountLikes(ctx, target.Type, []uint64{target.ID})
	if err != nil {
		return 0, err
	}
	return counts[target.ID], nil
}

func (s *feedService) IsLikedBy(ctx context.Context, username string, target model.Target) (bool, error) {
	if !target.Type.Valid() {
		return false, errs.Validation("unknown target type %q", target.Type)
	}
	liked, err := s.repo.LikedBy(ctx, username, target.Type, []uint64{target.ID})
	if err != nil {
		return false, err
	}
	return liked[target.ID], nil
}

// cleanContent 校验正文：不能只有空白，长度按字符计；正文按原样保存，转义由展示端负责
func (s *feedService) cleanContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errs.Validation("content must not be empty")
	}
	if n := utf8.RuneCountInString(content); n > s.opts.MaxContentLength {
		return "", errs.Validation("content is %d characters, at most %d allowed", n, s.opts.MaxContentLength)
	}
	return content, nil
}
