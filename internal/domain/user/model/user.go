package model

import (
	baseModel "karmafeed/pkg/model"
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Username string `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Password string `gorm:"size:72;not null" json:"-"` // bcrypt 哈希，不返回给前端
}

// SignupResult 注册结果
type SignupResult struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expires_at"`
}
