package model

import (
	"time"
)

// BaseModel 基础模型，自增 uint64 主键
// 帖子、评论、点赞创建后不可修改，因此不带 UpdatedAt / DeletedAt
type BaseModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
