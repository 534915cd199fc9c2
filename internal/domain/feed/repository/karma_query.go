package repository

import (
	"context"
	"fmt"
	"strings"

	"karmafeed/internal/domain/feed/model"

	"github.com/jmoiron/sqlx"
)

// KarmaSource 积分数据源，leaderboard 模块只依赖该接口
type KarmaSource interface {
	KarmaTotals(ctx context.Context, q model.KarmaQuery) ([]model.KarmaTotal, error)
}

// KarmaQuery 基于 sqlx 的积分聚合查询
// 点赞按目标类型加权后归属到目标作者，同一用户可能同时出现在帖子和评论两部分
type KarmaQuery struct {
	db *sqlx.DB
}

// NewKarmaQuery 创建积分查询
func NewKarmaQuery(db *sqlx.DB) *KarmaQuery {
	return &KarmaQuery{db: db}
}

// KarmaTotals 返回每个获得过点赞的作者的积分，未排序
func (k *KarmaQuery) KarmaTotals(ctx context.Context, q model.KarmaQuery) ([]model.KarmaTotal, error) {
	query, args := buildKarmaSQL(q)

	var totals []model.KarmaTotal
	if err := k.db.SelectContext(ctx, &totals, k.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("aggregate karma: %w", err)
	}
	return totals, nil
}

// buildKarmaSQL 生成 ? 占位符的查询，由 sqlx.Rebind 转成驱动对应的 bindvar
func buildKarmaSQL(q model.KarmaQuery) (string, []interface{}) {
	var windowed bool
	if !q.Since.IsZero() {
		windowed = true
	}

	part := func(table string, targetType model.TargetType, points int64, args []interface{}) (string, []interface{}) {
		var sb strings.Builder
		sb.WriteString("SELECT t.author AS username, CAST(? AS BIGINT) AS points FROM likes l JOIN ")
		sb.WriteString(table)
		sb.WriteString(" t ON t.id = l.target_id WHERE l.target_type = ?")
		args = append(args, points, string(targetType))
		if windowed {
			sb.WriteString(" AND l.created_at >= ?")
			args = append(args, q.Since.UTC())
		}
		return sb.String(), args
	}

	args := make([]interface{}, 0, 6)
	postPart, args := part("posts", model.TargetPost, q.PostPoints, args)
	commentPart, args := part("comments", model.TargetComment, q.CommentPoints, args)

	query := "SELECT username, CAST(SUM(points) AS BIGINT) AS karma FROM (" +
		postPart + " UNION ALL " + commentPart +
		") k GROUP BY username"
	return query, args
}
