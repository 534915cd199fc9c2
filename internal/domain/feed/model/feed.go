package model

import (
	"time"

	baseModel "karmafeed/pkg/model"
)

// TargetType 可点赞对象类型
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Valid 是否为支持的对象类型
func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

// Target 点赞目标 (类型 + ID)
type Target struct {
	Type TargetType
	ID   uint64
}

// LikeStatus 点赞切换后的状态
type LikeStatus string

const (
	StatusLiked   LikeStatus = "liked"
	StatusUnliked LikeStatus = "unliked"
)

// Post 帖子模型
// like_count / comments_count 为派生值，不落库
type Post struct {
	baseModel.BaseModel
	Author  string `gorm:"size:150;not null;index" json:"author"`
	Content string `gorm:"type:text;not null" json:"content"`
}

// Comment 评论模型
// 以 parent_id 组成的扁平表存储，Depth 在插入时确定：一级评论为 0
type Comment struct {
	baseModel.BaseModel
	PostID   uint64  `gorm:"not null;index" json:"post_id"`
	ParentID *uint64 `gorm:"index" json:"parent_id"`
	Author   string  `gorm:"size:150;not null;index" json:"author"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	Depth    int     `gorm:"not null;default:0" json:"depth"`
}

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// Like 点赞模型，(username, target_type, target_id) 唯一
// 记录存在即已点赞，取消点赞直接删除
type Like struct {
	baseModel.BaseModel
	Username   string     `gorm:"size:150;not null;uniqueIndex:idx_like_unique,priority:1" json:"username"`
	TargetType TargetType `gorm:"size:16;not null;uniqueIndex:idx_like_unique,priority:2;index:idx_like_target,priority:1" json:"target_type"`
	TargetID   uint64     `gorm:"not null;uniqueIndex:idx_like_unique,priority:3;index:idx_like_target,priority:2" json:"target_id"`
}

// PostView 返回给客户端的帖子，带派生计数
type PostView struct {
	ID            uint64    `json:"id"`
	Author        string    `json:"author"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	IsLiked       bool      `json:"is_liked"`
	LikeCount     int64     `json:"like_count"`
	CommentsCount int64     `json:"comments_count"`
}

// CommentNode 评论树节点
type CommentNode struct {
	ID        uint64         `json:"id"`
	PostID    uint64         `json:"post_id"`
	ParentID  *uint64        `json:"parent_id"`
	Author    string         `json:"author"`
	Content   string         `json:"content"`
	Depth     int            `json:"depth"`
	CreatedAt time.Time      `json:"created_at"`
	Likes     int64          `json:"likes"`
	IsLiked   bool           `json:"is_liked"`
	Replies   []*CommentNode `json:"replies"`
}

// ToggleResult 点赞切换结果
type ToggleResult struct {
	Status    LikeStatus `json:"status"`
	LikeCount int64      `json:"like_count"`
}

// KarmaQuery 积分统计参数
type KarmaQuery struct {
	PostPoints    int64
	CommentPoints int64
	// Since 为零值时统计全部历史点赞
	Since time.Time
}

// KarmaTotal 单个用户的积分汇总
type KarmaTotal struct {
	Username string `db:"username" json:"username"`
	Karma    int64  `db:"karma" json:"karma"`
}
