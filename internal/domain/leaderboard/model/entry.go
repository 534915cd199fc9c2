package model

import "time"

// Entry 排行榜条目
type Entry struct {
	Username string `json:"username"`
	Karma    int64  `json:"karma"`
}

// Snapshot 一次计算的完整结果，写入缓存供其他实例冷启动
type Snapshot struct {
	Entries     []Entry   `json:"entries"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
